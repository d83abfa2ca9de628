package store

import "context"

// ServerStore persists AcsServer records.
type ServerStore interface {
	GetServer(ctx context.Context, id string) (*AcsServer, error)
	ListServers(ctx context.Context) ([]*AcsServer, error)
	CreateServer(ctx context.Context, s *AcsServer) error
	UpdateServer(ctx context.Context, s *AcsServer) error
}

// RegistrationStore persists CpeRegistration records.
type RegistrationStore interface {
	GetRegistration(ctx context.Context, id string) (*CpeRegistration, error)
	ListRegistrations(ctx context.Context) ([]*CpeRegistration, error)
	// FindActiveBySerial returns the active registration for a serial number,
	// or a not-found error when no active registration matches.
	FindActiveBySerial(ctx context.Context, serial string) (*CpeRegistration, error)
	CreateRegistration(ctx context.Context, r *CpeRegistration) error
	UpdateRegistration(ctx context.Context, r *CpeRegistration) error
}

// JobStore persists ManagementJob records. Jobs are never deleted by the
// bridge; deletion, if any, is an external concern.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*ManagementJob, error)
	ListJobs(ctx context.Context, deviceID string) ([]*ManagementJob, error)
	CreateJob(ctx context.Context, j *ManagementJob) error
	UpdateJob(ctx context.Context, j *ManagementJob) error
	// TransitionJob atomically applies mutate to the job iff its current
	// status is one of from, and persists the result. It returns a state
	// error naming the current status otherwise. This closes the race of two
	// concurrent executes both passing the precondition check.
	TransitionJob(ctx context.Context, id string, from []JobStatus, mutate func(*ManagementJob)) (*ManagementJob, error)
}

// Store aggregates the three record stores behind one backend.
type Store interface {
	ServerStore
	RegistrationStore
	JobStore
}

func statusAllowed(s JobStatus, from []JobStatus) bool {
	for _, f := range from {
		if s == f {
			return true
		}
	}
	return false
}
