// Ontbridge - TR-069 ONT Management Bridge
//
// A CLI bridge between an internal ONT inventory and GenieACS servers:
//   - Resolves internal ONT records to remote ACS device identities
//   - Issues management operations over the GenieACS northbound REST API
//   - Normalizes parameter trees across the Device./InternetGatewayDevice. roots
//   - Keeps a durable ledger of queued management jobs
//   - Audit logging of all management actions
//
// Command layout:
//
//	ontbridge ont <verb> <ont-id> [args]       Management verbs on a registered ONT
//	ontbridge device <verb> [args]             Raw NBI device inventory
//	ontbridge job <verb> [args]                Durable management jobs
//	ontbridge server|register <verb> [args]    Bridge record management
//	ontbridge preset|provision|fault <verb>    ACS-side administration
//	ontbridge audit|settings|version           Meta
//
// Examples:
//
//	ontbridge server add lab-acs http://acs.lab:7557
//	ontbridge register add --serial 48575443ABCDEF01 --oui 202BC1 --product-class HG8245H --server <id>
//	ontbridge ont status <registration-id>
//	ontbridge ont set-ssid <registration-id> HomeNet
//	ontbridge job create <registration-id> reboot --label "nightly reboot"
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/audit"
	"github.com/michaelayoade/ontbridge/pkg/settings"
	"github.com/michaelayoade/ontbridge/pkg/util"
	"github.com/michaelayoade/ontbridge/pkg/version"
)

var (
	// Global option flags
	verbose    bool
	jsonOutput bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "ontbridge",
	Short:             "TR-069 ONT Management Bridge",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Ontbridge manages TR-069 ONTs through GenieACS servers.

Registered ONTs resolve to their ACS without any remote lookup; unregistered
serials fall back to a search against the configured default ACS.

  ontbridge ont <verb> <ont-id> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		auditPath := userSettings.AuditLogPath
		if auditPath == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				auditPath = filepath.Join(home, ".ontbridge", "audit.log")
			} else {
				auditPath = "ontbridge-audit.log"
			}
		}
		auditLogger, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "ont", Title: "ONT Management:"},
		&cobra.Group{ID: "acs", Title: "ACS Operations:"},
		&cobra.Group{ID: "records", Title: "Bridge Records:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{ontCmd, jobCmd} {
		cmd.GroupID = "ont"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{deviceCmd, presetCmd, provisionCmd, faultCmd} {
		cmd.GroupID = "acs"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{serverCmd, registerCmd} {
		cmd.GroupID = "records"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("ontbridge dev build (use 'make build' for version info)")
		} else {
			fmt.Println("ontbridge " + version.Info())
		}
	},
}

// addOutputFlags registers --json as a local flag. For noun-group parent
// commands it is persistent so subcommands inherit it.
func addOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if cmd.HasSubCommands() {
		flags = cmd.PersistentFlags()
	}
	flags.BoolVar(&jsonOutput, "json", false, "JSON output")
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help,
// or version command. Those run without stores or audit logging.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}
