package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/store"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage ACS server records",
	Long: `Manage the ACS servers the bridge knows about.

Servers are soft-deactivated, never deleted: registrations keep referencing
them. One server can be marked as the default for directory fallback search.

Examples:
  ontbridge server add lab-acs http://acs.lab:7557
  ontbridge server list
  ontbridge server set-default <id>`,
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name> <base-url>",
	Short: "Add an ACS server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		srv := &store.AcsServer{Name: args[0], BaseURL: args[1], Active: true}
		if err := st.CreateServer(ctx, srv); err != nil {
			return err
		}
		fmt.Printf("ACS server %s added (id %s)\n", srv.Name, srv.ID)
		return nil
	},
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ACS servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		servers, err := st.ListServers(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.PrintJSON(servers)
		}
		if len(servers) == 0 {
			fmt.Println("No ACS servers configured")
			return nil
		}

		defaultID := userSettings.DefaultACS()
		t := cli.NewTable("ID", "NAME", "BASE URL", "STATUS", "DEFAULT")
		for _, srv := range servers {
			def := ""
			if srv.ID == defaultID {
				def = "*"
			}
			t.Row(srv.ID, srv.Name, srv.BaseURL, activeLabel(srv.Active), def)
		}
		t.Flush()
		return nil
	},
}

var serverSetDefaultCmd = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Set the default ACS server",
	Long: `Set the ACS server used by directory fallback search when an ONT
has no explicit registration binding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		srv, err := st.GetServer(ctx, args[0])
		if err != nil {
			return err
		}

		userSettings.SetDefaultACS(srv.ID)
		if err := userSettings.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("Default ACS server set to %s (%s)\n", srv.Name, srv.ID)
		return nil
	},
}

var serverEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Re-activate an ACS server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServerActive(args[0], true)
	},
}

var serverDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Deactivate an ACS server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServerActive(args[0], false)
	},
}

func setServerActive(id string, active bool) error {
	ctx := context.Background()
	st, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	srv, err := st.GetServer(ctx, id)
	if err != nil {
		return err
	}
	srv.Active = active
	if err := st.UpdateServer(ctx, srv); err != nil {
		return err
	}
	fmt.Printf("ACS server %s is now %s\n", srv.Name, activeLabel(active))
	return nil
}

func init() {
	addOutputFlags(serverCmd)
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverSetDefaultCmd)
	serverCmd.AddCommand(serverEnableCmd)
	serverCmd.AddCommand(serverDisableCmd)
}
