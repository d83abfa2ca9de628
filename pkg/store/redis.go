package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/michaelayoade/ontbridge/pkg/util"
)

// Redis hash keys, one per record type.
const (
	serversKey       = "ontbridge|servers"
	registrationsKey = "ontbridge|registrations"
	jobsKey          = "ontbridge|jobs"
)

// RedisStore persists records as JSON values in Redis hashes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store against the given Redis address.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// Connect tests the connection.
func (s *RedisStore) Connect(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewID generates a record id. Time-ordered so listings sort naturally.
func NewID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func (s *RedisStore) getRecord(ctx context.Context, hash, kind, id string, out interface{}) error {
	data, err := s.client.HGet(ctx, hash, id).Result()
	if err == redis.Nil {
		return util.NewNotFoundError(kind, id)
	}
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", kind, id, err)
	}
	return json.Unmarshal([]byte(data), out)
}

func (s *RedisStore) putRecord(ctx context.Context, hash, kind, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", kind, id, err)
	}
	return s.client.HSet(ctx, hash, id, string(data)).Err()
}

// GetServer fetches an ACS server record by id.
func (s *RedisStore) GetServer(ctx context.Context, id string) (*AcsServer, error) {
	var srv AcsServer
	if err := s.getRecord(ctx, serversKey, "ACS server", id, &srv); err != nil {
		return nil, err
	}
	return &srv, nil
}

// ListServers returns all ACS server records ordered by id.
func (s *RedisStore) ListServers(ctx context.Context) ([]*AcsServer, error) {
	vals, err := s.client.HGetAll(ctx, serversKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing ACS servers: %w", err)
	}
	servers := make([]*AcsServer, 0, len(vals))
	for id, data := range vals {
		var srv AcsServer
		if err := json.Unmarshal([]byte(data), &srv); err != nil {
			util.Warnf("store: skipping malformed ACS server record %s: %v", id, err)
			continue
		}
		servers = append(servers, &srv)
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].ID < servers[j].ID })
	return servers, nil
}

// CreateServer inserts an ACS server record, assigning an id if unset.
func (s *RedisStore) CreateServer(ctx context.Context, srv *AcsServer) error {
	if srv.ID == "" {
		srv.ID = NewID()
	}
	return s.putRecord(ctx, serversKey, "ACS server", srv.ID, srv)
}

// UpdateServer replaces an existing ACS server record.
func (s *RedisStore) UpdateServer(ctx context.Context, srv *AcsServer) error {
	exists, err := s.client.HExists(ctx, serversKey, srv.ID).Result()
	if err != nil {
		return fmt.Errorf("updating ACS server %s: %w", srv.ID, err)
	}
	if !exists {
		return util.NewNotFoundError("ACS server", srv.ID)
	}
	return s.putRecord(ctx, serversKey, "ACS server", srv.ID, srv)
}

// GetRegistration fetches a CPE registration by id.
func (s *RedisStore) GetRegistration(ctx context.Context, id string) (*CpeRegistration, error) {
	var reg CpeRegistration
	if err := s.getRecord(ctx, registrationsKey, "registration", id, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListRegistrations returns all CPE registrations ordered by id.
func (s *RedisStore) ListRegistrations(ctx context.Context) ([]*CpeRegistration, error) {
	vals, err := s.client.HGetAll(ctx, registrationsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	regs := make([]*CpeRegistration, 0, len(vals))
	for id, data := range vals {
		var reg CpeRegistration
		if err := json.Unmarshal([]byte(data), &reg); err != nil {
			util.Warnf("store: skipping malformed registration record %s: %v", id, err)
			continue
		}
		regs = append(regs, &reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs, nil
}

// FindActiveBySerial returns the active registration matching a serial number.
func (s *RedisStore) FindActiveBySerial(ctx context.Context, serial string) (*CpeRegistration, error) {
	regs, err := s.ListRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	for _, reg := range regs {
		if reg.Active && reg.SerialNumber == serial {
			return reg, nil
		}
	}
	return nil, util.NewNotFoundError("registration", serial)
}

// CreateRegistration inserts a registration, assigning an id if unset.
func (s *RedisStore) CreateRegistration(ctx context.Context, reg *CpeRegistration) error {
	if reg.ID == "" {
		reg.ID = NewID()
	}
	return s.putRecord(ctx, registrationsKey, "registration", reg.ID, reg)
}

// UpdateRegistration replaces an existing registration.
func (s *RedisStore) UpdateRegistration(ctx context.Context, reg *CpeRegistration) error {
	exists, err := s.client.HExists(ctx, registrationsKey, reg.ID).Result()
	if err != nil {
		return fmt.Errorf("updating registration %s: %w", reg.ID, err)
	}
	if !exists {
		return util.NewNotFoundError("registration", reg.ID)
	}
	return s.putRecord(ctx, registrationsKey, "registration", reg.ID, reg)
}

// GetJob fetches a management job by id.
func (s *RedisStore) GetJob(ctx context.Context, id string) (*ManagementJob, error) {
	var job ManagementJob
	if err := s.getRecord(ctx, jobsKey, "job", id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns jobs, newest first, optionally filtered by device id.
func (s *RedisStore) ListJobs(ctx context.Context, deviceID string) ([]*ManagementJob, error) {
	vals, err := s.client.HGetAll(ctx, jobsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	jobs := make([]*ManagementJob, 0, len(vals))
	for id, data := range vals {
		var job ManagementJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			util.Warnf("store: skipping malformed job record %s: %v", id, err)
			continue
		}
		if deviceID != "" && job.DeviceID != deviceID {
			continue
		}
		jobs = append(jobs, &job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

// CreateJob inserts a job, assigning an id if unset.
func (s *RedisStore) CreateJob(ctx context.Context, job *ManagementJob) error {
	if job.ID == "" {
		job.ID = NewID()
	}
	return s.putRecord(ctx, jobsKey, "job", job.ID, job)
}

// UpdateJob replaces an existing job record.
func (s *RedisStore) UpdateJob(ctx context.Context, job *ManagementJob) error {
	exists, err := s.client.HExists(ctx, jobsKey, job.ID).Result()
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	if !exists {
		return util.NewNotFoundError("job", job.ID)
	}
	return s.putRecord(ctx, jobsKey, "job", job.ID, job)
}

// TransitionJob applies mutate to the job iff its status is one of from,
// using WATCH so two concurrent transitions cannot both pass the check.
func (s *RedisStore) TransitionJob(ctx context.Context, id string, from []JobStatus, mutate func(*ManagementJob)) (*ManagementJob, error) {
	var result *ManagementJob

	txn := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, jobsKey, id).Result()
		if err == redis.Nil {
			return util.NewNotFoundError("job", id)
		}
		if err != nil {
			return fmt.Errorf("reading job %s: %w", id, err)
		}

		var job ManagementJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return fmt.Errorf("decoding job %s: %w", id, err)
		}
		if !statusAllowed(job.Status, from) {
			return util.NewStateError("transition", "job "+id, string(job.Status))
		}

		mutate(&job)
		encoded, err := json.Marshal(&job)
		if err != nil {
			return fmt.Errorf("encoding job %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, jobsKey, id, string(encoded))
			return nil
		})
		if err != nil {
			return err
		}
		result = &job
		return nil
	}

	// A single retry is enough here: a lost WATCH means another transition
	// won, and the re-read will fail the status check.
	err := s.client.Watch(ctx, txn, jobsKey)
	if err == redis.TxFailedErr {
		err = s.client.Watch(ctx, txn, jobsKey)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
