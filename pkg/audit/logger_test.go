package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewFileLogger(path, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestLogAndQuery(t *testing.T) {
	l, _ := newTestLogger(t, RotationConfig{})

	events := []*Event{
		NewEvent("alice", "reboot", "ont:1").WithSuccess(),
		NewEvent("bob", "reboot", "ont:2").WithError(errors.New("ACS unreachable")),
		NewEvent("alice", "set-wifi-ssid", "ont:1").WithMetadata("ssid", "HomeNet").WithSuccess(),
	}
	for _, e := range events {
		if err := l.Log(e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	all, err := l.Query(Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by actor", Filter{Actor: "alice"}, 2},
		{"by action", Filter{Action: "reboot"}, 2},
		{"by entity", Filter{Entity: "ont:2"}, 1},
		{"successes", Filter{SuccessOnly: true}, 2},
		{"failures", Filter{FailureOnly: true}, 1},
		{"limit", Filter{Limit: 1}, 1},
		{"offset past end", Filter{Offset: 10}, 0},
		{"no match", Filter{Actor: "nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQueryPreservesMetadata(t *testing.T) {
	l, _ := newTestLogger(t, RotationConfig{})

	if err := l.Log(NewEvent("alice", "toggle-lan-port", "ont:1").
		WithMetadata("port", 2).WithSuccess()); err != nil {
		t.Fatal(err)
	}

	got, err := l.Query(Filter{Action: "toggle-lan-port"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events", len(got))
	}
	// JSON round trip turns numbers into float64.
	if got[0].Metadata["port"] != float64(2) {
		t.Errorf("port = %v", got[0].Metadata["port"])
	}
}

func TestQuerySkipsMalformedLines(t *testing.T) {
	l, path := newTestLogger(t, RotationConfig{})

	if err := l.Log(NewEvent("alice", "reboot", "ont:1").WithSuccess()); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n")
	f.Close()
	if err := l.Log(NewEvent("bob", "reboot", "ont:2").WithSuccess()); err != nil {
		t.Fatal(err)
	}

	got, err := l.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d events, want the 2 well-formed ones", len(got))
	}
}

func TestRotation(t *testing.T) {
	l, path := newTestLogger(t, RotationConfig{MaxSize: 1, MaxBackups: 5})

	if err := l.Log(NewEvent("alice", "reboot", "ont:1").WithSuccess()); err != nil {
		t.Fatal(err)
	}
	// The first write exceeded MaxSize, so the second triggers rotation.
	if err := l.Log(NewEvent("alice", "reboot", "ont:2").WithSuccess()); err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d rotated files, want 1", len(matches))
	}
}

func TestDefaultLoggerUnset(t *testing.T) {
	// With no default logger configured, logging is a no-op and queries are
	// empty rather than errors.
	if err := Log(NewEvent("alice", "reboot", "ont:1")); err != nil {
		t.Errorf("Log without default logger: %v", err)
	}
	got, err := Query(Filter{})
	if err != nil || len(got) != 0 {
		t.Errorf("Query without default logger: %v, %v", got, err)
	}
}
