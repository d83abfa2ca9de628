package acs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/michaelayoade/ontbridge/internal/testutil"
	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

func TestGetDevice(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	nbi.AddDevice("202BC1-HG8245H-SN1", map[string]interface{}{
		"Device": map[string]interface{}{
			"DeviceInfo": map[string]interface{}{
				"UpTime": testutil.WrappedValue(float64(90061)),
			},
		},
	})

	gw := acs.NewGateway(nbi.URL(), time.Second)
	doc, err := gw.GetDevice(context.Background(), "202BC1-HG8245H-SN1")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if doc["_id"] != "202BC1-HG8245H-SN1" {
		t.Errorf("unexpected _id: %v", doc["_id"])
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()

	gw := acs.NewGateway(nbi.URL(), time.Second)
	_, err := gw.GetDevice(context.Background(), "missing")
	if !errors.Is(err, util.ErrRemoteFailed) {
		t.Fatalf("want remote error, got %v", err)
	}
}

func TestTransportFailureIsRemoteError(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	url := nbi.URL()
	nbi.Close() // connection refused from here on

	gw := acs.NewGateway(url, time.Second)
	_, err := gw.GetDevice(context.Background(), "any")
	if !errors.Is(err, util.ErrRemoteFailed) {
		t.Fatalf("want remote error for refused connection, got %v", err)
	}
}

func TestCountDevices(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	nbi.AddDevice("a-b-1", nil)
	nbi.AddDevice("a-b-2", nil)

	gw := acs.NewGateway(nbi.URL(), time.Second)
	n, err := gw.CountDevices(context.Background(), "")
	if err != nil {
		t.Fatalf("CountDevices: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestCreateTaskEmptyBody(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()

	gw := acs.NewGateway(nbi.URL(), time.Second)
	result, err := gw.Reboot(context.Background(), "a-b-1")
	if err != nil {
		t.Fatalf("Reboot: %v", err)
	}
	// Not all tasks return content; an empty response body must still
	// produce a usable empty document.
	if result == nil || len(result) != 0 {
		t.Errorf("want empty document, got %v", result)
	}

	task := nbi.LastTask()
	if task == nil {
		t.Fatal("no task recorded")
	}
	if task.Task["name"] != "reboot" {
		t.Errorf("task name = %v", task.Task["name"])
	}
	if !task.ConnectionRequest {
		t.Error("expected connection_request=true")
	}
}

func TestCreateTaskEscapesDeviceID(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()

	gw := acs.NewGateway(nbi.URL(), time.Second)
	if _, err := gw.Reboot(context.Background(), "a-b c/d-1"); err != nil {
		t.Fatalf("Reboot: %v", err)
	}
	// The server decodes the escaped path segment back to the raw id.
	if got := nbi.LastTask().DeviceID; got != "a-b c/d-1" {
		t.Errorf("device id = %q", got)
	}
}

func TestSetParameterValuesTriples(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()

	gw := acs.NewGateway(nbi.URL(), time.Second)
	_, err := gw.SetParameterValues(context.Background(), "a-b-1", map[string]string{
		"Device.WiFi.SSID.1.SSID": "Home",
	})
	if err != nil {
		t.Fatalf("SetParameterValues: %v", err)
	}

	task := nbi.LastTask()
	if task.Task["name"] != "setParameterValues" {
		t.Fatalf("task name = %v", task.Task["name"])
	}
	triples, ok := task.Task["parameterValues"].([]interface{})
	if !ok || len(triples) != 1 {
		t.Fatalf("parameterValues = %v", task.Task["parameterValues"])
	}
	triple := triples[0].([]interface{})
	if triple[0] != "Device.WiFi.SSID.1.SSID" || triple[1] != "Home" || triple[2] != "xsd:string" {
		t.Errorf("triple = %v", triple)
	}
}

func TestFindBySerialSuffix(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	nbi.AddDevice("202BC1-HG8245H-SN42", nil)
	nbi.AddDevice("202BC1-HG8245H-OTHER", nil)

	gw := acs.NewGateway(nbi.URL(), time.Second)
	devices, err := gw.FindBySerialSuffix(context.Background(), "SN42")
	if err != nil {
		t.Fatalf("FindBySerialSuffix: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
	if devices[0]["_id"] != "202BC1-HG8245H-SN42" {
		t.Errorf("_id = %v", devices[0]["_id"])
	}
}
