package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Manage CPE registrations",
	Long: `Manage CPE registrations: the binding between an internally tracked
ONT serial number and the ACS server that manages it.

A registered ONT resolves to its ACS without any remote search. The
(OUI, product class, serial) triple composes the remote device id.

Examples:
  ontbridge register add --serial 48575443ABCDEF01 --oui 202BC1 --product-class HG8245H --server <id>
  ontbridge register list
  ontbridge register disable <id>`,
}

var (
	regSerial       string
	regOUI          string
	regProductClass string
	regServer       string
	regConnReqURL   string
)

var registerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an ONT against an ACS server",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := &util.ValidationBuilder{}
		v.Add(regSerial != "", "--serial is required")
		v.Add(regOUI != "", "--oui is required")
		v.Add(regProductClass != "", "--product-class is required")
		v.Add(regServer != "", "--server is required")
		if err := v.Build(); err != nil {
			return err
		}

		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		// The server must exist; a typo here would strand the registration.
		if _, err := st.GetServer(ctx, regServer); err != nil {
			return err
		}

		reg := &store.CpeRegistration{
			AcsServerID:          regServer,
			SerialNumber:         regSerial,
			OUI:                  regOUI,
			ProductClass:         regProductClass,
			ConnectionRequestURL: regConnReqURL,
			Active:               true,
		}
		if err := st.CreateRegistration(ctx, reg); err != nil {
			return err
		}
		fmt.Printf("Registered %s (id %s, remote device %s)\n",
			reg.SerialNumber, reg.ID,
			acs.BuildDeviceID(reg.OUI, reg.ProductClass, reg.SerialNumber))
		return nil
	},
}

var registerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List CPE registrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		regs, err := st.ListRegistrations(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.PrintJSON(regs)
		}
		if len(regs) == 0 {
			fmt.Println("No registrations")
			return nil
		}

		t := cli.NewTable("ID", "SERIAL", "REMOTE DEVICE", "SERVER", "STATUS")
		for _, reg := range regs {
			t.Row(reg.ID, reg.SerialNumber,
				acs.BuildDeviceID(reg.OUI, reg.ProductClass, reg.SerialNumber),
				reg.AcsServerID, activeLabel(reg.Active))
		}
		t.Flush()
		return nil
	},
}

var registerShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		reg, err := st.GetRegistration(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.PrintJSON(reg)
		}

		t := cli.NewTable("FIELD", "VALUE")
		t.Row("id", reg.ID)
		t.Row("serial", reg.SerialNumber)
		t.Row("oui", reg.OUI)
		t.Row("product class", reg.ProductClass)
		t.Row("remote device", acs.BuildDeviceID(reg.OUI, reg.ProductClass, reg.SerialNumber))
		t.Row("server", reg.AcsServerID)
		if reg.ConnectionRequestURL != "" {
			t.Row("connection request URL", reg.ConnectionRequestURL)
		}
		if reg.LastInformAt != nil {
			t.Row("last inform", reg.LastInformAt.Format("2006-01-02 15:04:05"))
		}
		t.Row("status", activeLabel(reg.Active))
		t.Flush()
		return nil
	},
}

var registerEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Re-activate a registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRegistrationActive(args[0], true)
	},
}

var registerDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Deactivate a registration",
	Long: `Deactivate a registration. The ONT stops resolving through its ACS
binding; directory fallback search may still find it on the default ACS.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRegistrationActive(args[0], false)
	},
}

func setRegistrationActive(id string, active bool) error {
	ctx := context.Background()
	st, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	reg, err := st.GetRegistration(ctx, id)
	if err != nil {
		return err
	}
	reg.Active = active
	if err := st.UpdateRegistration(ctx, reg); err != nil {
		return err
	}
	fmt.Printf("Registration %s (%s) is now %s\n", reg.ID, reg.SerialNumber, activeLabel(active))
	return nil
}

func init() {
	registerAddCmd.Flags().StringVar(&regSerial, "serial", "", "ONT serial number")
	registerAddCmd.Flags().StringVar(&regOUI, "oui", "", "Manufacturer OUI")
	registerAddCmd.Flags().StringVar(&regProductClass, "product-class", "", "Device product class")
	registerAddCmd.Flags().StringVar(&regServer, "server", "", "ACS server id")
	registerAddCmd.Flags().StringVar(&regConnReqURL, "connreq-url", "", "Connection request URL (optional)")

	addOutputFlags(registerCmd)
	registerCmd.AddCommand(registerAddCmd)
	registerCmd.AddCommand(registerListCmd)
	registerCmd.AddCommand(registerShowCmd)
	registerCmd.AddCommand(registerEnableCmd)
	registerCmd.AddCommand(registerDisableCmd)
}
