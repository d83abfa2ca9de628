package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/store"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Raw ACS device inventory",
	Long: `Raw device inventory on an ACS server's northbound interface.

These commands talk to the ACS directly by remote device id; no registration
is required. The server defaults to the configured default ACS.

Examples:
  ontbridge device list
  ontbridge device find 48575443ABCDEF01
  ontbridge device show 202BC1-HG8245H-48575443ABCDEF01
  ontbridge device count --query '{"_deviceId._OUI":"202BC1"}'`,
}

var (
	deviceServer     string
	deviceQuery      string
	deviceProjection string
	deviceDeleteYes  bool
)

// withGateway handles store and gateway setup for inventory commands.
func withGateway(fn func(ctx context.Context, gw *acs.Gateway, st store.Store) error) error {
	ctx := context.Background()
	st, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	gw, err := serverGateway(ctx, st, deviceServer)
	if err != nil {
		return err
	}
	return fn(ctx, gw, st)
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices on the ACS",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			projection := deviceProjection
			if projection == "" && !jsonOutput {
				projection = "_id,_lastInform"
			}
			devices, err := gw.ListDevices(ctx, deviceQuery, projection)
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.PrintJSON(devices)
			}
			if len(devices) == 0 {
				fmt.Println("No devices found")
				return nil
			}

			t := cli.NewTable("DEVICE ID", "LAST INFORM")
			for _, doc := range devices {
				id, _ := doc["_id"].(string)
				t.Row(id, cli.Value(doc["_lastInform"]))
			}
			t.Flush()
			return nil
		})
	},
}

var deviceShowCmd = &cobra.Command{
	Use:   "show <device-id>",
	Short: "Show a device document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			doc, err := gw.GetDevice(ctx, args[0])
			if err != nil {
				return err
			}
			return cli.PrintJSON(doc)
		})
	},
}

var deviceFindCmd = &cobra.Command{
	Use:   "find <serial>",
	Short: "Find devices by serial number suffix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			devices, err := gw.FindBySerialSuffix(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.PrintJSON(devices)
			}
			if len(devices) == 0 {
				fmt.Println("No devices found")
				return nil
			}
			for _, doc := range devices {
				if id, ok := doc["_id"].(string); ok {
					fmt.Println(id)
				}
			}
			return nil
		})
	},
}

var deviceCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count devices on the ACS",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			n, err := gw.CountDevices(ctx, deviceQuery)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		})
	},
}

var deviceDeleteCmd = &cobra.Command{
	Use:   "delete <device-id>",
	Short: "Delete a device record from the ACS",
	Long: `Delete a device record from the ACS.

Only the ACS-side record is removed. The device re-registers on its next
inform unless it is also deprovisioned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deviceDeleteYes && !confirm(fmt.Sprintf("Delete device %s from the ACS?", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			if err := gw.DeleteDevice(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Device deleted.")
			return nil
		})
	},
}

var deviceGetCmd = &cobra.Command{
	Use:   "get <device-id> <parameter>...",
	Short: "Queue a parameter read on the device",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			result, err := gw.GetParameterValues(ctx, args[0], args[1:])
			if err != nil {
				return err
			}
			return cli.PrintJSON(result)
		})
	},
}

var deviceTasksCmd = &cobra.Command{
	Use:   "tasks <device-id>",
	Short: "List pending tasks for a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			tasks, err := gw.GetPendingTasks(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.PrintJSON(tasks)
			}
			if len(tasks) == 0 {
				fmt.Println("No pending tasks")
				return nil
			}
			t := cli.NewTable("TASK ID", "NAME")
			for _, task := range tasks {
				id, _ := task["_id"].(string)
				t.Row(id, cli.Value(task["name"]))
			}
			t.Flush()
			return nil
		})
	},
}

var (
	downloadFileType string
	downloadURL      string
	downloadFilename string
)

var deviceDownloadCmd = &cobra.Command{
	Use:   "download <device-id>",
	Short: "Queue a file download to the device",
	Long: `Queue a firmware or configuration download to the device.

Example:
  ontbridge device download 202BC1-HG8245H-SN1 \
    --file-type "1 Firmware Upgrade Image" --url http://fw.lab/image.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if downloadURL == "" {
			return fmt.Errorf("--url is required")
		}
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			result, err := gw.Download(ctx, args[0], downloadFileType, downloadURL, downloadFilename)
			if err != nil {
				return err
			}
			fmt.Println(cli.Green("Download queued"))
			if jsonOutput {
				return cli.PrintJSON(result)
			}
			return nil
		})
	},
}

var deviceTagCmd = &cobra.Command{
	Use:   "tag <device-id> <tag>",
	Short: "Add a tag to a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			if err := gw.AddTag(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Tagged %s with %q\n", args[0], args[1])
			return nil
		})
	},
}

var deviceUntagCmd = &cobra.Command{
	Use:   "untag <device-id> <tag>",
	Short: "Remove a tag from a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGateway(func(ctx context.Context, gw *acs.Gateway, st store.Store) error {
			if err := gw.RemoveTag(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Removed tag %q from %s\n", args[1], args[0])
			return nil
		})
	},
}

func init() {
	deviceCmd.PersistentFlags().StringVar(&deviceServer, "server", "", "ACS server id (default: configured default)")
	deviceListCmd.Flags().StringVar(&deviceQuery, "query", "", "NBI query (JSON)")
	deviceListCmd.Flags().StringVar(&deviceProjection, "projection", "", "Comma-separated projection paths")
	deviceCountCmd.Flags().StringVar(&deviceQuery, "query", "", "NBI query (JSON)")
	deviceDeleteCmd.Flags().BoolVarP(&deviceDeleteYes, "yes", "y", false, "Skip confirmation prompt")
	deviceDownloadCmd.Flags().StringVar(&downloadFileType, "file-type", "1 Firmware Upgrade Image", "TR-069 file type")
	deviceDownloadCmd.Flags().StringVar(&downloadURL, "url", "", "File URL")
	deviceDownloadCmd.Flags().StringVar(&downloadFilename, "filename", "", "Target filename")

	addOutputFlags(deviceCmd)
	deviceCmd.AddCommand(deviceListCmd)
	deviceCmd.AddCommand(deviceShowCmd)
	deviceCmd.AddCommand(deviceFindCmd)
	deviceCmd.AddCommand(deviceCountCmd)
	deviceCmd.AddCommand(deviceDeleteCmd)
	deviceCmd.AddCommand(deviceGetCmd)
	deviceCmd.AddCommand(deviceTasksCmd)
	deviceCmd.AddCommand(deviceDownloadCmd)
	deviceCmd.AddCommand(deviceTagCmd)
	deviceCmd.AddCommand(deviceUntagCmd)
}
