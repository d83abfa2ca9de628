package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/michaelayoade/ontbridge/internal/testutil"
	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/ledger"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

func newLedger(t *testing.T, nbiURL string) (*ledger.Ledger, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	testutil.SeedServer(t, st, "srv1", nbiURL)
	testutil.SeedRegistration(t, st, "reg1", "srv1", "202BC1", "HG8245H", "SN1")
	l := ledger.New(st, func(baseURL string) *acs.Gateway {
		return acs.NewGateway(baseURL, time.Second)
	}, "tester")
	return l, st
}

func TestCreateValidation(t *testing.T) {
	l, _ := newLedger(t, "http://127.0.0.1:1")

	_, err := l.Create(context.Background(), "reg1", "reboot unit", "", nil)
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Fatalf("empty command: err = %v, want validation error", err)
	}

	_, err = l.Create(context.Background(), "no-such-reg", "", "reboot", nil)
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown device: err = %v, want not-found", err)
	}
}

func TestCreateQueuesJob(t *testing.T) {
	l, st := newLedger(t, "http://127.0.0.1:1")

	job, err := l.Create(context.Background(), "reg1", "nightly reboot", "reboot", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" {
		t.Fatal("no id assigned")
	}
	if job.Status != store.JobQueued {
		t.Errorf("status = %s, want queued", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	stored, err := st.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if stored.Command != "reboot" || stored.Label != "nightly reboot" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestExecuteSuccess(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	l, _ := newLedger(t, nbi.URL())

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}

	done, err := l.Execute(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if done.Status != store.JobSucceeded {
		t.Errorf("status = %s, want succeeded", done.Status)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("timestamps not recorded")
	}
	if done.Error != "" {
		t.Errorf("error = %q, want empty", done.Error)
	}

	task := nbi.LastTask()
	if task == nil {
		t.Fatal("no task reached the ACS")
	}
	if task.DeviceID != "202BC1-HG8245H-SN1" {
		t.Errorf("remote device id = %q", task.DeviceID)
	}
	if task.Task["name"] != "reboot" {
		t.Errorf("task name = %v", task.Task["name"])
	}
	if !task.ConnectionRequest {
		t.Error("execute should request an immediate connection")
	}
}

func TestExecutePayloadForwarded(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	l, _ := newLedger(t, nbi.URL())

	payload := map[string]interface{}{"objectName": "Device.WiFi."}
	job, err := l.Create(context.Background(), "reg1", "", "refreshObject", payload)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Execute(context.Background(), job.ID); err != nil {
		t.Fatal(err)
	}

	if got := nbi.LastTask().Task["objectName"]; got != "Device.WiFi." {
		t.Errorf("objectName = %v", got)
	}
}

func TestExecuteUnreachableACSFailsJob(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	url := nbi.URL()
	nbi.Close()
	l, _ := newLedger(t, url)

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}

	// The remote failure is recorded on the job, not raised.
	done, err := l.Execute(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if done.Status != store.JobFailed {
		t.Errorf("status = %s, want failed", done.Status)
	}
	if done.Error == "" {
		t.Error("failed job should carry the error message")
	}
	if done.CompletedAt == nil {
		t.Error("failed job should have a completion time")
	}
}

func TestExecuteFailedJobAgain(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	l, _ := newLedger(t, nbi.URL())

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}

	nbi.FailAll = true
	done, err := l.Execute(context.Background(), job.ID)
	if err != nil || done.Status != store.JobFailed {
		t.Fatalf("first execute: job %+v, err %v", done, err)
	}

	nbi.FailAll = false
	done, err = l.Execute(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("re-execute: %v", err)
	}
	if done.Status != store.JobSucceeded {
		t.Errorf("status = %s, want succeeded after retry", done.Status)
	}
	if done.Error != "" {
		t.Errorf("retry should clear the previous error, got %q", done.Error)
	}
}

func TestExecuteTerminalJobRejected(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	l, _ := newLedger(t, nbi.URL())

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Execute(context.Background(), job.ID); err != nil {
		t.Fatal(err)
	}

	_, err = l.Execute(context.Background(), job.ID)
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("executing a succeeded job: err = %v, want invalid-state", err)
	}
	// Only the first execute reached the ACS.
	if nbi.TaskCount() != 1 {
		t.Errorf("task count = %d, want 1", nbi.TaskCount())
	}
}

func TestExecuteUnknownJob(t *testing.T) {
	l, _ := newLedger(t, "http://127.0.0.1:1")
	_, err := l.Execute(context.Background(), "missing")
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestExecuteServerWithoutBaseURL(t *testing.T) {
	st := store.NewMemoryStore()
	testutil.SeedServer(t, st, "srv1", "")
	testutil.SeedRegistration(t, st, "reg1", "srv1", "202BC1", "HG8245H", "SN1")
	l := ledger.New(st, func(baseURL string) *acs.Gateway {
		return acs.NewGateway(baseURL, time.Second)
	}, "tester")

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.Execute(context.Background(), job.ID)
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want not-found for missing base URL", err)
	}
	// The job must still be queued: the precondition failed before any
	// transition.
	stored, _ := st.GetJob(context.Background(), job.ID)
	if stored.Status != store.JobQueued {
		t.Errorf("status = %s, want queued", stored.Status)
	}
}

func TestCancel(t *testing.T) {
	nbi := testutil.NewFakeNBI()
	defer nbi.Close()
	l, _ := newLedger(t, nbi.URL())

	job, err := l.Create(context.Background(), "reg1", "", "reboot", nil)
	if err != nil {
		t.Fatal(err)
	}

	canceled, err := l.Cancel(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != store.JobCanceled {
		t.Errorf("status = %s, want canceled", canceled.Status)
	}
	if canceled.CompletedAt == nil {
		t.Error("canceled job should have a completion time")
	}
	if nbi.TaskCount() != 0 {
		t.Error("cancel must never reach the ACS")
	}

	// A canceled job cannot be canceled again or executed.
	if _, err := l.Cancel(context.Background(), job.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("second cancel: err = %v, want invalid-state", err)
	}
	if _, err := l.Execute(context.Background(), job.ID); !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("execute after cancel: err = %v, want invalid-state", err)
	}
}

func TestDescribe(t *testing.T) {
	job := &store.ManagementJob{ID: "j1", Command: "reboot", Status: store.JobFailed, Error: "connection refused"}
	got := ledger.Describe(job)
	want := "[failed] reboot (j1): connection refused"
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}
