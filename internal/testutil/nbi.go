// Package testutil provides shared fixtures for ontbridge tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ReceivedTask is one task POST captured by the fake NBI.
type ReceivedTask struct {
	DeviceID          string
	Task              map[string]interface{}
	ConnectionRequest bool
}

// FakeNBI is an httptest-backed double for a GenieACS northbound interface.
// Seed Devices, run requests against URL(), then inspect Tasks.
type FakeNBI struct {
	mu      sync.Mutex
	server  *httptest.Server
	Devices map[string]map[string]interface{}
	Tasks   []ReceivedTask

	// FailAll makes every request return HTTP 500.
	FailAll bool
	// TaskResponse, when set, is returned as the create-task body;
	// otherwise the response body is empty.
	TaskResponse map[string]interface{}
}

// NewFakeNBI starts a fake NBI server. Callers must Close it.
func NewFakeNBI() *FakeNBI {
	f := &FakeNBI{Devices: make(map[string]map[string]interface{})}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the fake NBI base URL.
func (f *FakeNBI) URL() string {
	return f.server.URL
}

// Close shuts the server down.
func (f *FakeNBI) Close() {
	f.server.Close()
}

// AddDevice seeds a device document under the given id.
func (f *FakeNBI) AddDevice(id string, doc map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc == nil {
		doc = map[string]interface{}{}
	}
	doc["_id"] = id
	f.Devices[id] = doc
}

// TaskCount returns how many tasks have been posted.
func (f *FakeNBI) TaskCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Tasks)
}

// LastTask returns the most recently posted task, or nil.
func (f *FakeNBI) LastTask() *ReceivedTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Tasks) == 0 {
		return nil
	}
	t := f.Tasks[len(f.Tasks)-1]
	return &t
}

func (f *FakeNBI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailAll {
		http.Error(w, "simulated ACS failure", http.StatusInternalServerError)
		return
	}

	path := r.URL.Path
	switch {
	case path == "/devices" && r.Method == http.MethodHead:
		w.Header().Set("X-Total-Count", strconv.Itoa(len(f.matchDevices(r.URL.Query().Get("query")))))
		w.WriteHeader(http.StatusOK)

	case path == "/devices" && r.Method == http.MethodGet:
		writeJSON(w, f.matchDevices(r.URL.Query().Get("query")))

	case strings.HasPrefix(path, "/devices/") && strings.HasSuffix(path, "/tasks") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/devices/"), "/tasks")
		var task map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Tasks = append(f.Tasks, ReceivedTask{
			DeviceID:          id,
			Task:              task,
			ConnectionRequest: r.URL.Query().Get("connection_request") == "true",
		})
		if f.TaskResponse != nil {
			writeJSON(w, f.TaskResponse)
			return
		}
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(path, "/devices/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/devices/")
		doc, ok := f.Devices[id]
		if !ok {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		writeJSON(w, doc)

	case strings.HasPrefix(path, "/devices/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/devices/")
		if _, ok := f.Devices[id]; !ok {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		delete(f.Devices, id)
		w.WriteHeader(http.StatusOK)

	case path == "/tasks" && r.Method == http.MethodGet:
		writeJSON(w, []map[string]interface{}{})

	default:
		// Presets, provisions, faults, and tags accept anything: the fake
		// only verifies request shapes the bridge's tests care about.
		w.WriteHeader(http.StatusOK)
	}
}

// matchDevices applies the only query shape the bridge issues: an _id regex.
func (f *FakeNBI) matchDevices(query string) []map[string]interface{} {
	out := []map[string]interface{}{}
	var re *regexp.Regexp
	if query != "" {
		var q struct {
			ID struct {
				Regex string `json:"$regex"`
			} `json:"_id"`
		}
		if err := json.Unmarshal([]byte(query), &q); err == nil && q.ID.Regex != "" {
			re = regexp.MustCompile(q.ID.Regex)
		}
	}
	for id, doc := range f.Devices {
		if re == nil || re.MatchString(id) {
			out = append(out, doc)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
