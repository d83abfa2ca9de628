package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/cli"
	"github.com/michaelayoade/ontbridge/pkg/directory"
	"github.com/michaelayoade/ontbridge/pkg/dispatch"
	"github.com/michaelayoade/ontbridge/pkg/ledger"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

// actor names the caller in audit events.
func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// openStore connects to the record store. Callers must invoke the returned
// closer when done.
func openStore(ctx context.Context) (store.Store, func(), error) {
	rs := store.NewRedisStore(userSettings.GetRedisAddr(), userSettings.RedisDB)
	if err := rs.Connect(ctx); err != nil {
		rs.Close()
		return nil, nil, fmt.Errorf("connecting to record store at %s: %w", userSettings.GetRedisAddr(), err)
	}
	return rs, func() { rs.Close() }, nil
}

func gatewayFactory() directory.GatewayFactory {
	timeout := userSettings.RequestTimeout()
	return func(baseURL string) *acs.Gateway {
		return acs.NewGateway(baseURL, timeout)
	}
}

func newDirectory(st store.Store) *directory.Directory {
	return directory.New(st, userSettings, gatewayFactory(), userSettings.SearchTimeout())
}

func newDispatcher(st store.Store) *dispatch.Dispatcher {
	return dispatch.New(registrationOnts{st}, newDirectory(st), actor())
}

func newLedger(st store.Store) *ledger.Ledger {
	return ledger.New(st, gatewayFactory(), actor())
}

// registrationOnts adapts the registration store to the dispatcher's ONT
// lookup: the bridge's own registrations are its inventory.
type registrationOnts struct {
	regs store.RegistrationStore
}

func (r registrationOnts) GetONT(ctx context.Context, id string) (*dispatch.Ont, error) {
	reg, err := r.regs.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dispatch.Ont{
		ID:           reg.ID,
		SerialNumber: reg.SerialNumber,
		Name:         reg.SerialNumber,
	}, nil
}

// serverGateway resolves the ACS server a command should talk to: --server
// if given, the configured default otherwise.
func serverGateway(ctx context.Context, st store.Store, serverID string) (*acs.Gateway, error) {
	if serverID == "" {
		serverID = userSettings.DefaultACS()
	}
	if serverID == "" {
		return nil, fmt.Errorf("no ACS server: use --server or set a default via 'ontbridge settings set acs <id>'")
	}
	srv, err := st.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if srv.BaseURL == "" {
		return nil, util.NewNotFoundError("ACS base URL for server", srv.ID)
	}
	return gatewayFactory()(srv.BaseURL), nil
}

// printResult renders a dispatcher result. A failed result becomes a non-zero
// exit via the returned error.
func printResult(res dispatch.Result) error {
	if jsonOutput {
		if err := cli.PrintJSON(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("operation failed")
		}
		return nil
	}

	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	fmt.Println(cli.Green(res.Message))
	return nil
}

// confirm prompts for interactive confirmation of a destructive action.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// activeLabel renders an Active flag as a colored status word.
func activeLabel(active bool) string {
	if active {
		return cli.Status("active")
	}
	return cli.Red("disabled")
}
