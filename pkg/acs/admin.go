package acs

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/michaelayoade/ontbridge/pkg/tree"
)

// ListPresets returns all presets configured on the ACS.
func (g *Gateway) ListPresets(ctx context.Context) ([]tree.Document, error) {
	var presets []tree.Document
	if err := g.getJSON(ctx, "list presets", "/presets", nil, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// PutPreset creates or replaces a preset by name.
func (g *Gateway) PutPreset(ctx context.Context, name string, preset tree.Document) error {
	return g.putJSON(ctx, "put preset", "/presets/"+url.PathEscape(name), preset)
}

// DeletePreset removes a preset by name.
func (g *Gateway) DeletePreset(ctx context.Context, name string) error {
	return g.delete(ctx, "delete preset", "/presets/"+url.PathEscape(name))
}

// ListProvisions returns all provision scripts configured on the ACS.
func (g *Gateway) ListProvisions(ctx context.Context) ([]tree.Document, error) {
	var provisions []tree.Document
	if err := g.getJSON(ctx, "list provisions", "/provisions", nil, &provisions); err != nil {
		return nil, err
	}
	return provisions, nil
}

// PutProvision creates or replaces a provision by name. Unlike every other
// write on the NBI the body is the raw script text, not JSON.
func (g *Gateway) PutProvision(ctx context.Context, name, script string) error {
	path := "/provisions/" + url.PathEscape(name)
	_, err := g.do(ctx, "put provision", http.MethodPut, path, nil,
		strings.NewReader(script), "text/plain", nil)
	return err
}

// DeleteProvision removes a provision by name.
func (g *Gateway) DeleteProvision(ctx context.Context, name string) error {
	return g.delete(ctx, "delete provision", "/provisions/"+url.PathEscape(name))
}

// ListFaults returns current faults, optionally filtered by a JSON query.
func (g *Gateway) ListFaults(ctx context.Context, query string) ([]tree.Document, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	var faults []tree.Document
	if err := g.getJSON(ctx, "list faults", "/faults", q, &faults); err != nil {
		return nil, err
	}
	return faults, nil
}

// DeleteFault clears a fault by id.
func (g *Gateway) DeleteFault(ctx context.Context, faultID string) error {
	return g.delete(ctx, "delete fault", "/faults/"+url.PathEscape(faultID))
}

// RetryFault re-queues the faulted channel for execution.
func (g *Gateway) RetryFault(ctx context.Context, faultID string) error {
	path := "/faults/" + url.PathEscape(faultID) + "/retry"
	_, err := g.do(ctx, "retry fault", http.MethodPost, path, nil, nil, "", nil)
	return err
}

// AddTag attaches a tag to a device.
func (g *Gateway) AddTag(ctx context.Context, deviceID, tag string) error {
	path := "/devices/" + url.PathEscape(deviceID) + "/tags/" + url.PathEscape(tag)
	_, err := g.do(ctx, "add tag", http.MethodPost, path, nil, nil, "", nil)
	return err
}

// RemoveTag detaches a tag from a device.
func (g *Gateway) RemoveTag(ctx context.Context, deviceID, tag string) error {
	path := "/devices/" + url.PathEscape(deviceID) + "/tags/" + url.PathEscape(tag)
	return g.delete(ctx, "remove tag", path)
}
