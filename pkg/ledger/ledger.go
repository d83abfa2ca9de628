// Package ledger keeps the durable record of management commands handed off
// to an ACS.
//
// A job describes work performed by an external system: the ledger's states
// track the hand-off, not the device-side outcome. Lifecycle:
//
//	queued → running → succeeded | failed
//	queued → canceled
//
// A failed job may be executed again; nothing else is re-executable. Jobs are
// never deleted by the bridge.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/michaelayoade/ontbridge/pkg/acs"
	"github.com/michaelayoade/ontbridge/pkg/audit"
	"github.com/michaelayoade/ontbridge/pkg/directory"
	"github.com/michaelayoade/ontbridge/pkg/store"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

// Ledger creates, executes, and cancels management jobs.
type Ledger struct {
	store      store.Store
	newGateway directory.GatewayFactory
	actor      string
}

// New creates a ledger over the given store. actor names the caller in audit
// events.
func New(st store.Store, newGateway directory.GatewayFactory, actor string) *Ledger {
	return &Ledger{store: st, newGateway: newGateway, actor: actor}
}

// Create inserts a queued job targeting a registered device.
func (l *Ledger) Create(ctx context.Context, deviceID, label, command string, payload map[string]interface{}) (*store.ManagementJob, error) {
	v := &util.ValidationBuilder{}
	v.Add(command != "", "command must not be empty")
	if err := v.Build(); err != nil {
		return nil, err
	}
	if _, err := l.store.GetRegistration(ctx, deviceID); err != nil {
		return nil, err
	}

	job := &store.ManagementJob{
		DeviceID:  deviceID,
		Label:     label,
		Command:   command,
		Payload:   payload,
		Status:    store.JobQueued,
		CreatedAt: time.Now(),
	}
	if err := l.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	util.WithJob(job.ID).Infof("queued %s for device %s", command, deviceID)
	return job, nil
}

// Execute hands a queued (or previously failed) job to the device's ACS.
//
// The running transition is persisted before the remote call so a crash
// mid-call leaves a visibly running job rather than a queued one. The
// conditional transition also means two concurrent executes cannot both
// proceed: the loser sees an invalid-state error.
//
// Gateway and unexpected errors do not escape: they land in the job's error
// field with a failed status. Not-found and invalid-state preconditions do
// raise to the caller.
func (l *Ledger) Execute(ctx context.Context, jobID string) (*store.ManagementJob, error) {
	job, err := l.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	reg, err := l.store.GetRegistration(ctx, job.DeviceID)
	if err != nil {
		return nil, err
	}
	srv, err := l.store.GetServer(ctx, reg.AcsServerID)
	if err != nil {
		return nil, err
	}
	if srv.BaseURL == "" {
		return nil, util.NewNotFoundError("ACS base URL for server", srv.ID)
	}

	job, err = l.store.TransitionJob(ctx, jobID,
		[]store.JobStatus{store.JobQueued, store.JobFailed},
		func(j *store.ManagementJob) {
			now := time.Now()
			j.Status = store.JobRunning
			j.StartedAt = &now
			j.CompletedAt = nil
			j.Error = ""
		})
	if err != nil {
		return nil, err
	}

	remoteID := acs.BuildDeviceID(reg.OUI, reg.ProductClass, reg.SerialNumber)
	gw := l.newGateway(srv.BaseURL)

	_, callErr := gw.CreateTask(ctx, remoteID, acs.NewTask(job.Command, job.Payload), true)

	if callErr != nil && !errors.Is(callErr, util.ErrRemoteFailed) {
		// Anything that isn't a gateway error still fails the job; only the
		// log line tells the two apart.
		util.WithJob(jobID).Errorf("unexpected error executing %s: %v", job.Command, callErr)
	}

	job, err = l.store.TransitionJob(ctx, jobID,
		[]store.JobStatus{store.JobRunning},
		func(j *store.ManagementJob) {
			now := time.Now()
			j.CompletedAt = &now
			if callErr != nil {
				j.Status = store.JobFailed
				j.Error = callErr.Error()
			} else {
				j.Status = store.JobSucceeded
			}
		})
	if err != nil {
		return nil, err
	}

	l.record("job-execute", job, callErr, remoteID)
	return job, nil
}

// Cancel withdraws a job that has not started. Only queued jobs can be
// canceled; cancellation never reaches into the ACS.
func (l *Ledger) Cancel(ctx context.Context, jobID string) (*store.ManagementJob, error) {
	job, err := l.store.TransitionJob(ctx, jobID,
		[]store.JobStatus{store.JobQueued},
		func(j *store.ManagementJob) {
			now := time.Now()
			j.Status = store.JobCanceled
			j.CompletedAt = &now
		})
	if err != nil {
		return nil, err
	}
	l.record("job-cancel", job, nil, "")
	return job, nil
}

func (l *Ledger) record(action string, job *store.ManagementJob, callErr error, remoteID string) {
	event := audit.NewEvent(l.actor, action, "job:"+job.ID).
		WithMetadata("command", job.Command).
		WithMetadata("device", job.DeviceID).
		WithMetadata("status", string(job.Status))
	if remoteID != "" {
		event.WithMetadata("remote_device", remoteID)
	}
	if callErr != nil {
		event.WithError(callErr)
	} else {
		event.WithSuccess()
	}
	if err := audit.Log(event); err != nil {
		util.Warnf("ledger: audit log failed: %v", err)
	}
}

// Describe renders a one-line human summary of a job.
func Describe(job *store.ManagementJob) string {
	s := fmt.Sprintf("[%s] %s (%s)", job.Status, job.Command, job.ID)
	if job.Error != "" {
		s += ": " + job.Error
	}
	return s
}
