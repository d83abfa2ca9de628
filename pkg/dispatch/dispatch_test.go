package dispatch_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/michaelayoade/ontbridge/internal/testutil"
	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/directory"
	"github.com/michaelayoade/ontbridge/pkg/dispatch"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

// ontMap is a fixed OntLookup for tests.
type ontMap map[string]*dispatch.Ont

func (m ontMap) GetONT(ctx context.Context, id string) (*dispatch.Ont, error) {
	ont, ok := m[id]
	if !ok {
		return nil, util.NewNotFoundError("ONT", id)
	}
	return ont, nil
}

// newDispatcher wires a dispatcher whose ONT "ont-1" (serial SN1) is
// registered against the given fake NBI.
func newDispatcher(t *testing.T, nbi *testutil.FakeNBI) *dispatch.Dispatcher {
	t.Helper()
	st := store.NewMemoryStore()
	testutil.SeedServer(t, st, "srv1", nbi.URL())
	testutil.SeedRegistration(t, st, "reg1", "srv1", "202BC1", "HG8245H", "SN1")

	dir := directory.New(st, testutil.FixedConfig{}, func(baseURL string) *acs.Gateway {
		return acs.NewGateway(baseURL, time.Second)
	}, time.Second)

	onts := ontMap{"ont-1": {ID: "ont-1", SerialNumber: "SN1", Name: "unit 1"}}
	return dispatch.New(onts, dir, "tester")
}

func TestRebootUnknownOnt(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	res := d.Reboot(context.Background(), "no-such-ont")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != dispatch.MsgOntNotFound {
		t.Errorf("message = %q", res.Message)
	}
	if nbi.TaskCount() != 0 {
		t.Errorf("no task should be issued, got %d", nbi.TaskCount())
	}
}

func TestRebootUnmanagedOnt(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()

	st := store.NewMemoryStore()
	dir := directory.New(st, testutil.FixedConfig{}, func(baseURL string) *acs.Gateway {
		return acs.NewGateway(baseURL, time.Second)
	}, time.Second)
	d := dispatch.New(ontMap{"ont-1": {ID: "ont-1", SerialNumber: "SN1"}}, dir, "tester")

	res := d.Reboot(context.Background(), "ont-1")
	if res.Success || res.Message != dispatch.MsgNoACS {
		t.Fatalf("result = %+v", res)
	}
}

func TestReboot(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	res := d.Reboot(context.Background(), "ont-1")
	if !res.Success {
		t.Fatalf("reboot failed: %s", res.Message)
	}
	task := nbi.LastTask()
	if task == nil || task.Task["name"] != "reboot" {
		t.Fatalf("task = %+v", task)
	}
	if task.DeviceID != "202BC1-HG8245H-SN1" {
		t.Errorf("device id = %q", task.DeviceID)
	}
	if !task.ConnectionRequest {
		t.Error("reboot should request an immediate connection")
	}
}

func TestSetWifiSSIDValidation(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	for _, ssid := range []string{"", strings.Repeat("x", 33)} {
		res := d.SetWifiSSID(context.Background(), "ont-1", ssid)
		if res.Success {
			t.Errorf("SSID %q should be rejected", ssid)
		}
	}
	// Rejection happens before any resolution or remote call.
	if nbi.TaskCount() != 0 {
		t.Errorf("no task should be issued, got %d", nbi.TaskCount())
	}
}

func TestSetWifiSSIDWritesBothRoots(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	res := d.SetWifiSSID(context.Background(), "ont-1", "HomeNet")
	if !res.Success {
		t.Fatalf("SetWifiSSID failed: %s", res.Message)
	}
	if nbi.TaskCount() != 1 {
		t.Fatalf("want exactly one task, got %d", nbi.TaskCount())
	}

	triples := nbi.LastTask().Task["parameterValues"].([]interface{})
	if len(triples) != 2 {
		t.Fatalf("want both namespace roots written, got %d triples", len(triples))
	}
	paths := map[string]string{}
	for _, raw := range triples {
		triple := raw.([]interface{})
		paths[triple[0].(string)] = triple[1].(string)
	}
	for _, want := range []string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		"Device.WiFi.SSID.1.SSID",
	} {
		if paths[want] != "HomeNet" {
			t.Errorf("path %s = %q, want HomeNet", want, paths[want])
		}
	}
}

func TestSetWifiPasswordTooShort(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	res := d.SetWifiPassword(context.Background(), "ont-1", "short")
	if res.Success {
		t.Fatal("short password should be rejected")
	}
	if nbi.TaskCount() != 0 {
		t.Error("no task should be issued")
	}
}

func TestToggleLanPort(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	if res := d.ToggleLanPort(context.Background(), "ont-1", 5, true); res.Success {
		t.Fatal("port 5 should be rejected")
	}
	if res := d.ToggleLanPort(context.Background(), "ont-1", 0, true); res.Success {
		t.Fatal("port 0 should be rejected")
	}

	res := d.ToggleLanPort(context.Background(), "ont-1", 2, false)
	if !res.Success {
		t.Fatalf("toggle failed: %s", res.Message)
	}
	triples := nbi.LastTask().Task["parameterValues"].([]interface{})
	if len(triples) != 2 {
		t.Fatalf("want both roots, got %d triples", len(triples))
	}
	for _, raw := range triples {
		triple := raw.([]interface{})
		if triple[1] != "false" {
			t.Errorf("%v = %v, want the string false", triple[0], triple[1])
		}
	}
}

func TestRemoteFailureSurfacesInResult(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)
	nbi.FailAll = true

	res := d.Reboot(context.Background(), "ont-1")
	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Message == "" {
		t.Error("failure result should carry the remote error message")
	}
}

func TestGetRunningConfig(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	nbi.AddDevice("202BC1-HG8245H-SN1", map[string]interface{}{
		"InternetGatewayDevice": map[string]interface{}{
			"DeviceInfo": map[string]interface{}{
				"ModelName": testutil.WrappedValue("HG8245H"),
			},
		},
		"Device": map[string]interface{}{
			"WiFi": map[string]interface{}{
				"SSID": map[string]interface{}{
					"1": map[string]interface{}{
						"SSID": testutil.WrappedValue("HomeNet"),
					},
				},
			},
		},
	})

	res := d.GetRunningConfig(context.Background(), "ont-1")
	if !res.Success {
		t.Fatalf("GetRunningConfig failed: %s", res.Message)
	}
	config := res.Data.(map[string]map[string]interface{})
	if config["device_info"]["ModelName"] != "HG8245H" {
		t.Errorf("device_info = %v", config["device_info"])
	}
	if config["wifi"]["SSID"] != "HomeNet" {
		t.Errorf("wifi = %v", config["wifi"])
	}
	if _, ok := config["wan"]; !ok {
		t.Error("all groups should be present even when empty")
	}
}

func TestStatus(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	d := newDispatcher(t, nbi)

	nbi.AddDevice("202BC1-HG8245H-SN1", map[string]interface{}{
		"InternetGatewayDevice": map[string]interface{}{
			"DeviceInfo": map[string]interface{}{
				"Manufacturer": testutil.WrappedValue("Huawei"),
				"UpTime":       testutil.WrappedValue(float64(90061)),
			},
			"LANDevice": map[string]interface{}{
				"1": map[string]interface{}{
					"Hosts": map[string]interface{}{
						"Host": map[string]interface{}{
							"1": map[string]interface{}{
								"HostName":  testutil.WrappedValue("laptop"),
								"IPAddress": testutil.WrappedValue("192.168.1.10"),
							},
						},
					},
				},
			},
		},
	})

	res := d.Status(context.Background(), "ont-1")
	if !res.Success {
		t.Fatalf("Status failed: %s", res.Message)
	}
	data := res.Data.(map[string]interface{})
	groups := data["groups"].(map[string]map[string]interface{})
	if groups["system"]["Manufacturer"] != "Huawei" {
		t.Errorf("system group = %v", groups["system"])
	}
	if groups["system"]["Uptime"] != "1d 1h 1m" {
		t.Errorf("Uptime = %v, want humanized form", groups["system"]["Uptime"])
	}
}
