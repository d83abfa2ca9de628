// Package store persists the bridge's three record types: ACS servers, CPE
// registrations, and management jobs. Consumers depend on the narrow Store
// interfaces; the Redis implementation is the production backend.
package store

import "time"

// AcsServer is a managed ACS endpoint. Deactivation is a soft flag; a server
// is never hard-deleted while registrations reference it.
type AcsServer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Active  bool   `json:"active"`
}

// CpeRegistration binds an internally tracked ONT (by serial number) to a
// remote device on a specific ACS server. The (OUI, ProductClass,
// SerialNumber) triple composes the remote device identifier.
type CpeRegistration struct {
	ID                   string     `json:"id"`
	AcsServerID          string     `json:"acs_server_id"`
	SerialNumber         string     `json:"serial_number"`
	OUI                  string     `json:"oui"`
	ProductClass         string     `json:"product_class"`
	ConnectionRequestURL string     `json:"connection_request_url,omitempty"`
	LastInformAt         *time.Time `json:"last_inform_at,omitempty"`
	Active               bool       `json:"active"`
}

// JobStatus is the lifecycle state of a management job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// Terminal reports whether the status admits no further transitions except
// re-execution from failed.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCanceled
}

// ManagementJob is the durable record of one management command targeting a
// registered device. The work itself runs on the ACS, outside this process;
// the job tracks what the bridge asked for and how the hand-off went.
type ManagementJob struct {
	ID          string                 `json:"id"`
	DeviceID    string                 `json:"device_id"`
	Label       string                 `json:"label"`
	Command     string                 `json:"command"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Status      JobStatus              `json:"status"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}
