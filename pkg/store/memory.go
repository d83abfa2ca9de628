package store

import (
	"context"
	"sort"
	"sync"

	"github.com/michaelayoade/ontbridge/pkg/util"
)

// MemoryStore is an in-memory Store used by tests and single-shot CLI runs
// that have no Redis available. It honors the same transition semantics as
// the Redis backend.
type MemoryStore struct {
	mu            sync.Mutex
	servers       map[string]*AcsServer
	registrations map[string]*CpeRegistration
	jobs          map[string]*ManagementJob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		servers:       make(map[string]*AcsServer),
		registrations: make(map[string]*CpeRegistration),
		jobs:          make(map[string]*ManagementJob),
	}
}

// GetServer fetches an ACS server record by id.
func (s *MemoryStore) GetServer(ctx context.Context, id string) (*AcsServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv, ok := s.servers[id]
	if !ok {
		return nil, util.NewNotFoundError("ACS server", id)
	}
	cp := *srv
	return &cp, nil
}

// ListServers returns all ACS server records ordered by id.
func (s *MemoryStore) ListServers(ctx context.Context) ([]*AcsServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*AcsServer, 0, len(s.servers))
	for _, srv := range s.servers {
		cp := *srv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateServer inserts an ACS server record, assigning an id if unset.
func (s *MemoryStore) CreateServer(ctx context.Context, srv *AcsServer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if srv.ID == "" {
		srv.ID = NewID()
	}
	cp := *srv
	s.servers[srv.ID] = &cp
	return nil
}

// UpdateServer replaces an existing ACS server record.
func (s *MemoryStore) UpdateServer(ctx context.Context, srv *AcsServer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.servers[srv.ID]; !ok {
		return util.NewNotFoundError("ACS server", srv.ID)
	}
	cp := *srv
	s.servers[srv.ID] = &cp
	return nil
}

// GetRegistration fetches a CPE registration by id.
func (s *MemoryStore) GetRegistration(ctx context.Context, id string) (*CpeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, util.NewNotFoundError("registration", id)
	}
	cp := *reg
	return &cp, nil
}

// ListRegistrations returns all CPE registrations ordered by id.
func (s *MemoryStore) ListRegistrations(ctx context.Context) ([]*CpeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*CpeRegistration, 0, len(s.registrations))
	for _, reg := range s.registrations {
		cp := *reg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindActiveBySerial returns the active registration matching a serial number.
func (s *MemoryStore) FindActiveBySerial(ctx context.Context, serial string) (*CpeRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.registrations {
		if reg.Active && reg.SerialNumber == serial {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, util.NewNotFoundError("registration", serial)
}

// CreateRegistration inserts a registration, assigning an id if unset.
func (s *MemoryStore) CreateRegistration(ctx context.Context, reg *CpeRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg.ID == "" {
		reg.ID = NewID()
	}
	cp := *reg
	s.registrations[reg.ID] = &cp
	return nil
}

// UpdateRegistration replaces an existing registration.
func (s *MemoryStore) UpdateRegistration(ctx context.Context, reg *CpeRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[reg.ID]; !ok {
		return util.NewNotFoundError("registration", reg.ID)
	}
	cp := *reg
	s.registrations[reg.ID] = &cp
	return nil
}

// GetJob fetches a management job by id.
func (s *MemoryStore) GetJob(ctx context.Context, id string) (*ManagementJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, util.NewNotFoundError("job", id)
	}
	cp := *job
	return &cp, nil
}

// ListJobs returns jobs, newest first, optionally filtered by device id.
func (s *MemoryStore) ListJobs(ctx context.Context, deviceID string) ([]*ManagementJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ManagementJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if deviceID != "" && job.DeviceID != deviceID {
			continue
		}
		cp := *job
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CreateJob inserts a job, assigning an id if unset.
func (s *MemoryStore) CreateJob(ctx context.Context, job *ManagementJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = NewID()
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

// UpdateJob replaces an existing job record.
func (s *MemoryStore) UpdateJob(ctx context.Context, job *ManagementJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return util.NewNotFoundError("job", job.ID)
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

// TransitionJob applies mutate under the store lock iff the job's status is
// one of from.
func (s *MemoryStore) TransitionJob(ctx context.Context, id string, from []JobStatus, mutate func(*ManagementJob)) (*ManagementJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, util.NewNotFoundError("job", id)
	}
	if !statusAllowed(job.Status, from) {
		return nil, util.NewStateError("transition", "job "+id, string(job.Status))
	}
	cp := *job
	mutate(&cp)
	s.jobs[id] = &cp
	out := cp
	return &out, nil
}
