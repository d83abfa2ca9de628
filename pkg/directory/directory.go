// Package directory resolves an internally tracked ONT to the ACS that
// manages it and the device id it is known by there.
package directory

import (
	"context"
	"time"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

// ConfigReader supplies the configured default ACS server id. Injected so
// tests can substitute fixed values.
type ConfigReader interface {
	DefaultACS() string
}

// GatewayFactory constructs a gateway for an ACS base URL.
type GatewayFactory func(baseURL string) *acs.Gateway

// Target is a resolved (gateway, remote device id) pair.
type Target struct {
	Gateway  *acs.Gateway
	DeviceID string
	Server   *store.AcsServer
}

// Directory resolves ONT serial numbers to management targets.
type Directory struct {
	registrations store.RegistrationStore
	servers       store.ServerStore
	config        ConfigReader
	newGateway    GatewayFactory
	searchTimeout time.Duration
}

// New creates a directory over the given stores and configuration.
func New(st store.Store, config ConfigReader, newGateway GatewayFactory, searchTimeout time.Duration) *Directory {
	if searchTimeout <= 0 {
		searchTimeout = 5 * time.Second
	}
	return &Directory{
		registrations: st,
		servers:       st,
		config:        config,
		newGateway:    newGateway,
		searchTimeout: searchTimeout,
	}
}

// Resolve maps an ONT serial number to a management target. Resolution never
// returns an error: a second value of false means the device is not
// TR-069-managed, and callers must treat it that way. Remote failures during
// the search fallback are logged and degrade to not-found.
//
// Order: an active registration wins and costs no network round trip; then
// the configured default ACS server is searched by serial suffix; then give
// up.
func (d *Directory) Resolve(ctx context.Context, serial string) (*Target, bool) {
	if t := d.resolveRegistered(ctx, serial); t != nil {
		return t, true
	}
	if t := d.resolveViaDefault(ctx, serial); t != nil {
		return t, true
	}
	return nil, false
}

func (d *Directory) resolveRegistered(ctx context.Context, serial string) *Target {
	reg, err := d.registrations.FindActiveBySerial(ctx, serial)
	if err != nil {
		return nil
	}
	if reg.AcsServerID == "" {
		return nil
	}
	srv, err := d.servers.GetServer(ctx, reg.AcsServerID)
	if err != nil || srv.BaseURL == "" {
		return nil
	}
	return &Target{
		Gateway:  d.newGateway(srv.BaseURL),
		DeviceID: acs.BuildDeviceID(reg.OUI, reg.ProductClass, reg.SerialNumber),
		Server:   srv,
	}
}

func (d *Directory) resolveViaDefault(ctx context.Context, serial string) *Target {
	serverID := d.config.DefaultACS()
	if serverID == "" {
		return nil
	}
	srv, err := d.servers.GetServer(ctx, serverID)
	if err != nil || srv.BaseURL == "" {
		return nil
	}

	gw := d.newGateway(srv.BaseURL)

	// This search runs inline on read paths, so it gets its own short bound.
	searchCtx, cancel := context.WithTimeout(ctx, d.searchTimeout)
	defer cancel()

	devices, err := gw.FindBySerialSuffix(searchCtx, serial)
	if err != nil {
		util.WithDevice(serial).Warnf("directory: default-ACS search failed: %v", err)
		return nil
	}
	if len(devices) == 0 {
		return nil
	}
	id, _ := devices[0]["_id"].(string)
	if id == "" {
		return nil
	}
	return &Target{Gateway: gw, DeviceID: id, Server: srv}
}
