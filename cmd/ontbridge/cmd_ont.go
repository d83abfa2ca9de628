package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/dispatch"
	"github.com/michaelayoade/ontbridge/pkg/tree"
)

var ontCmd = &cobra.Command{
	Use:   "ont",
	Short: "Manage a registered ONT",
	Long: `Management verbs against a registered ONT.

The ONT is named by its registration id. Resolution prefers the registration's
own ACS binding; unbound serials are searched on the default ACS.

Examples:
  ontbridge ont status <id>
  ontbridge ont reboot <id>
  ontbridge ont set-ssid <id> HomeNet
  ontbridge ont lan-port <id> 2 disable`,
}

// withDispatcher handles store setup boilerplate for ONT verbs.
func withDispatcher(fn func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result) error {
	ctx := context.Background()
	st, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return printResult(fn(ctx, newDispatcher(st)))
}

var ontStatusCmd = &cobra.Command{
	Use:   "status <ont-id>",
	Short: "Show normalized device status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		res := newDispatcher(st).Status(ctx, args[0])
		if jsonOutput || !res.Success {
			return printResult(res)
		}
		printStatus(res)
		return nil
	},
}

var ontConfigCmd = &cobra.Command{
	Use:   "config <ont-id>",
	Short: "Show running configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		res := newDispatcher(st).GetRunningConfig(ctx, args[0])
		if jsonOutput || !res.Success {
			return printResult(res)
		}

		config, _ := res.Data.(map[string]map[string]interface{})
		for _, section := range sortedKeys(config) {
			fmt.Println(cli.Bold(section))
			t := cli.NewTable("PARAMETER", "VALUE")
			for _, key := range sortedKeys(config[section]) {
				t.Row(key, cli.Value(config[section][key]))
			}
			t.Flush()
			fmt.Println()
		}
		return nil
	},
}

var ontRebootCmd = &cobra.Command{
	Use:   "reboot <ont-id>",
	Short: "Reboot the ONT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.Reboot(ctx, args[0])
		})
	},
}

var ontRefreshCmd = &cobra.Command{
	Use:   "refresh <ont-id>",
	Short: "Re-read the ONT's parameter tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.RefreshStatus(ctx, args[0])
		})
	},
}

var ontFactoryResetYes bool

var ontFactoryResetCmd = &cobra.Command{
	Use:   "factory-reset <ont-id>",
	Short: "Factory-reset the ONT",
	Long: `Factory-reset the ONT, wiping customer configuration.

Prompts for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ontFactoryResetYes && !confirm(fmt.Sprintf("Factory-reset ONT %s? This wipes its configuration", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}
		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.FactoryReset(ctx, args[0])
		})
	},
}

var ontSetSSIDCmd = &cobra.Command{
	Use:   "set-ssid <ont-id> <ssid>",
	Short: "Set the WiFi SSID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.SetWifiSSID(ctx, args[0], args[1])
		})
	},
}

var ontSetWifiPasswordCmd = &cobra.Command{
	Use:   "set-wifi-password <ont-id>",
	Short: "Set the WiFi passphrase",
	Long: `Set the WiFi passphrase on the ONT.

The passphrase is read from an interactive prompt so it never appears in
shell history or process listings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("New WiFi passphrase: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		fmt.Print("Confirm passphrase: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		if string(password) != string(again) {
			return fmt.Errorf("passphrases do not match")
		}

		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.SetWifiPassword(ctx, args[0], string(password))
		})
	},
}

var ontLanPortCmd = &cobra.Command{
	Use:   "lan-port <ont-id> <port> enable|disable",
	Short: "Enable or disable a LAN port",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q", args[1])
		}
		var enabled bool
		switch args[2] {
		case "enable":
			enabled = true
		case "disable":
			enabled = false
		default:
			return fmt.Errorf("invalid action %q: want enable or disable", args[2])
		}
		return withDispatcher(func(ctx context.Context, d *dispatch.Dispatcher) dispatch.Result {
			return d.ToggleLanPort(ctx, args[0], port, enabled)
		})
	},
}

// printStatus renders the status display groups and host table.
func printStatus(res dispatch.Result) {
	data, _ := res.Data.(map[string]interface{})
	groups, _ := data["groups"].(map[string]map[string]interface{})

	for _, name := range []string{"system", "wan", "lan", "wireless"} {
		values, ok := groups[name]
		if !ok {
			continue
		}
		fmt.Println(cli.Bold(name))
		t := cli.NewTable("PARAMETER", "VALUE")
		for _, label := range sortedKeys(values) {
			t.Row(label, cli.Value(values[label]))
		}
		t.Flush()
		fmt.Println()
	}

	hosts, _ := data["hosts"].([]tree.Instance)
	if len(hosts) > 0 {
		fmt.Println(cli.Bold("connected hosts"))
		t := cli.NewTable("#", "HOSTNAME", "IP", "MAC", "ACTIVE")
		for _, h := range hosts {
			t.Row(
				strconv.Itoa(h.Index),
				cli.Value(h.Fields["HostName"]),
				cli.Value(h.Fields["IPAddress"]),
				cli.Value(h.Fields["MACAddress"]),
				cli.Value(h.Fields["Active"]),
			)
		}
		t.Flush()
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	ontFactoryResetCmd.Flags().BoolVarP(&ontFactoryResetYes, "yes", "y", false, "Skip confirmation prompt")

	addOutputFlags(ontCmd)
	ontCmd.AddCommand(ontStatusCmd)
	ontCmd.AddCommand(ontConfigCmd)
	ontCmd.AddCommand(ontRebootCmd)
	ontCmd.AddCommand(ontRefreshCmd)
	ontCmd.AddCommand(ontFactoryResetCmd)
	ontCmd.AddCommand(ontSetSSIDCmd)
	ontCmd.AddCommand(ontSetWifiPasswordCmd)
	ontCmd.AddCommand(ontLanPortCmd)
}
