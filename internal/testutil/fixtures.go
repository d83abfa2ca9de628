package testutil

import (
	"context"

	"github.com/michaelayoade/ontbridge/pkg/store"
)

// FixedConfig is a directory.ConfigReader with a fixed default ACS id.
type FixedConfig struct {
	DefaultServerID string
}

// DefaultACS returns the fixed default ACS server id.
func (c FixedConfig) DefaultACS() string {
	return c.DefaultServerID
}

// SeedServer inserts an active ACS server record.
func SeedServer(t fatalf, st store.Store, id, baseURL string) *store.AcsServer {
	srv := &store.AcsServer{ID: id, Name: id, BaseURL: baseURL, Active: true}
	if err := st.CreateServer(context.Background(), srv); err != nil {
		t.Fatalf("seeding server %s: %v", id, err)
	}
	return srv
}

// SeedRegistration inserts an active registration bound to a server.
func SeedRegistration(t fatalf, st store.Store, id, serverID, oui, productClass, serial string) *store.CpeRegistration {
	reg := &store.CpeRegistration{
		ID:           id,
		AcsServerID:  serverID,
		SerialNumber: serial,
		OUI:          oui,
		ProductClass: productClass,
		Active:       true,
	}
	if err := st.CreateRegistration(context.Background(), reg); err != nil {
		t.Fatalf("seeding registration %s: %v", id, err)
	}
	return reg
}

// fatalf is the slice of testing.T these fixtures need.
type fatalf interface {
	Fatalf(format string, args ...interface{})
}

// WrappedValue builds the {"_value": v} leaf wrapper the NBI reports.
func WrappedValue(v interface{}) map[string]interface{} {
	return map[string]interface{}{"_value": v}
}
