package acs

import (
	"context"
	"net/url"
	"sort"

	"github.com/michaelayoade/ontbridge/pkg/tree"
)

// Task is a task object as the NBI expects it: a "name" key naming the verb
// plus verb-specific arguments. Shapes vary per verb, so tasks stay loosely
// typed the same way device documents do.
type Task map[string]interface{}

// NewTask builds a task from a verb name and optional payload arguments.
func NewTask(name string, payload map[string]interface{}) Task {
	t := Task{"name": name}
	for k, v := range payload {
		t[k] = v
	}
	return t
}

// CreateTask posts a task to a device's queue. With connectionRequest the ACS
// immediately issues a connection request so an online device executes the
// task now; otherwise it waits for the next inform. Some tasks return no
// content, in which case the result is an empty document.
func (g *Gateway) CreateTask(ctx context.Context, deviceID string, task Task, connectionRequest bool) (tree.Document, error) {
	q := url.Values{}
	q.Set("connection_request", boolString(connectionRequest))

	result := tree.Document{}
	path := "/devices/" + url.PathEscape(deviceID) + "/tasks"
	if err := g.postJSON(ctx, "create task", path, q, task, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetParameterValues queues a read of the named parameter paths.
func (g *Gateway) GetParameterValues(ctx context.Context, deviceID string, names []string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{
		"name":           "getParameterValues",
		"parameterNames": names,
	}, true)
}

// SetParameterValues queues a write of path→value pairs. The NBI wants
// [[path, value, type]] triples; everything the bridge writes is sent as
// xsd:string and coerced device-side. Paths are sorted for a deterministic
// request body.
func (g *Gateway) SetParameterValues(ctx context.Context, deviceID string, values map[string]string) (tree.Document, error) {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	triples := make([][]interface{}, 0, len(values))
	for _, p := range paths {
		triples = append(triples, []interface{}{p, values[p], "xsd:string"})
	}
	return g.CreateTask(ctx, deviceID, Task{
		"name":            "setParameterValues",
		"parameterValues": triples,
	}, true)
}

// RefreshObject queues a re-read of an entire parameter subtree.
func (g *Gateway) RefreshObject(ctx context.Context, deviceID, objectName string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{
		"name":       "refreshObject",
		"objectName": objectName,
	}, true)
}

// Reboot queues a device reboot.
func (g *Gateway) Reboot(ctx context.Context, deviceID string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{"name": "reboot"}, true)
}

// FactoryReset queues a factory reset.
func (g *Gateway) FactoryReset(ctx context.Context, deviceID string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{"name": "factoryReset"}, true)
}

// Download queues a file download (firmware, config) onto the device.
func (g *Gateway) Download(ctx context.Context, deviceID, fileType, fileURL, filename string) (tree.Document, error) {
	task := Task{
		"name":     "download",
		"fileType": fileType,
		"url":      fileURL,
	}
	if filename != "" {
		task["filename"] = filename
	}
	return g.CreateTask(ctx, deviceID, task, true)
}

// AddObject queues creation of a new instance under a multi-instance object.
func (g *Gateway) AddObject(ctx context.Context, deviceID, objectName string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{
		"name":       "addObject",
		"objectName": objectName,
	}, true)
}

// DeleteObject queues removal of a multi-instance object instance.
func (g *Gateway) DeleteObject(ctx context.Context, deviceID, objectName string) (tree.Document, error) {
	return g.CreateTask(ctx, deviceID, Task{
		"name":       "deleteObject",
		"objectName": objectName,
	}, true)
}

// GetPendingTasks lists tasks queued for a device that have not completed.
func (g *Gateway) GetPendingTasks(ctx context.Context, deviceID string) ([]tree.Document, error) {
	q := url.Values{}
	q.Set("query", `{"device":"`+deviceID+`"}`)
	var tasks []tree.Document
	if err := g.getJSON(ctx, "get pending tasks", "/tasks", q, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTask removes a queued task by its task id.
func (g *Gateway) DeleteTask(ctx context.Context, taskID string) error {
	return g.delete(ctx, "delete task", "/tasks/"+url.PathEscape(taskID))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
