package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/tree"
)

// Preset, provision, and fault commands administer the ACS itself rather
// than any single device. They share the device commands' --server flag
// convention.

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage ACS presets",
	Long: `Manage presets on the ACS: rules binding provisions to device
populations.

Examples:
  ontbridge preset list
  ontbridge preset put bootstrap preset.json
  ontbridge preset delete bootstrap`,
}

var adminServer string

func adminGateway(ctx context.Context, st store.Store) (*acs.Gateway, error) {
	return serverGateway(ctx, st, adminServer)
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			presets, err := gw.ListPresets(ctx)
			if err != nil {
				return err
			}
			return printNamedDocs(presets, "No presets")
		})
	},
}

var presetPutCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Create or replace a preset from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var preset tree.Document
		if err := json.Unmarshal(data, &preset); err != nil {
			return fmt.Errorf("parsing %s: %w", args[1], err)
		}
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.PutPreset(ctx, args[0], preset); err != nil {
				return err
			}
			fmt.Printf("Preset %s stored\n", args[0])
			return nil
		})
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.DeletePreset(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Preset %s deleted\n", args[0])
			return nil
		})
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Manage ACS provision scripts",
	Long: `Manage provision scripts on the ACS.

Examples:
  ontbridge provision list
  ontbridge provision put bootstrap bootstrap.js
  ontbridge provision delete bootstrap`,
}

var provisionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			provisions, err := gw.ListProvisions(ctx)
			if err != nil {
				return err
			}
			return printNamedDocs(provisions, "No provisions")
		})
	},
}

var provisionPutCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Create or replace a provision from a script file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.PutProvision(ctx, args[0], string(script)); err != nil {
				return err
			}
			fmt.Printf("Provision %s stored\n", args[0])
			return nil
		})
	},
}

var provisionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a provision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.DeleteProvision(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Provision %s deleted\n", args[0])
			return nil
		})
	},
}

var faultCmd = &cobra.Command{
	Use:   "fault",
	Short: "Inspect and clear ACS faults",
	Long: `Inspect and clear device faults recorded by the ACS.

Examples:
  ontbridge fault list
  ontbridge fault retry <fault-id>
  ontbridge fault delete <fault-id>`,
}

var faultQuery string

var faultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List faults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			faults, err := gw.ListFaults(ctx, faultQuery)
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.PrintJSON(faults)
			}
			if len(faults) == 0 {
				fmt.Println("No faults")
				return nil
			}
			t := cli.NewTable("FAULT ID", "CODE", "MESSAGE", "RETRIES")
			for _, f := range faults {
				id, _ := f["_id"].(string)
				t.Row(id, cli.Value(f["code"]), cli.Value(f["message"]), cli.Value(f["retries"]))
			}
			t.Flush()
			return nil
		})
	},
}

var faultDeleteCmd = &cobra.Command{
	Use:   "delete <fault-id>",
	Short: "Clear a fault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.DeleteFault(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Fault cleared.")
			return nil
		})
	},
}

var faultRetryCmd = &cobra.Command{
	Use:   "retry <fault-id>",
	Short: "Retry a faulted operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminGateway(func(ctx context.Context, gw *acs.Gateway) error {
			if err := gw.RetryFault(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Retry requested.")
			return nil
		})
	},
}

func withAdminGateway(fn func(ctx context.Context, gw *acs.Gateway) error) error {
	ctx := context.Background()
	st, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	gw, err := adminGateway(ctx, st)
	if err != nil {
		return err
	}
	return fn(ctx, gw)
}

// printNamedDocs renders documents that carry an _id field, one per row.
func printNamedDocs(docs []tree.Document, emptyMsg string) error {
	if jsonOutput {
		return cli.PrintJSON(docs)
	}
	if len(docs) == 0 {
		fmt.Println(emptyMsg)
		return nil
	}
	for _, doc := range docs {
		if id, ok := doc["_id"].(string); ok {
			fmt.Println(id)
		}
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{presetCmd, provisionCmd, faultCmd} {
		cmd.PersistentFlags().StringVar(&adminServer, "server", "", "ACS server id (default: configured default)")
		addOutputFlags(cmd)
	}
	faultListCmd.Flags().StringVar(&faultQuery, "query", "", "NBI query (JSON)")

	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetPutCmd)
	presetCmd.AddCommand(presetDeleteCmd)

	provisionCmd.AddCommand(provisionListCmd)
	provisionCmd.AddCommand(provisionPutCmd)
	provisionCmd.AddCommand(provisionDeleteCmd)

	faultCmd.AddCommand(faultListCmd)
	faultCmd.AddCommand(faultDeleteCmd)
	faultCmd.AddCommand(faultRetryCmd)
}
