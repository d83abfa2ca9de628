package acs

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/michaelayoade/ontbridge/pkg/tree"
)

// ListDevices queries the device collection. query is a JSON filter in the
// NBI's query language; projection limits the returned parameter paths.
// Either may be empty.
func (g *Gateway) ListDevices(ctx context.Context, query, projection string) ([]tree.Document, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	if projection != "" {
		q.Set("projection", projection)
	}
	var devices []tree.Document
	if err := g.getJSON(ctx, "list devices", "/devices", q, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice fetches one device document by its full device id.
func (g *Gateway) GetDevice(ctx context.Context, deviceID string) (tree.Document, error) {
	var doc tree.Document
	err := g.getJSON(ctx, "get device", "/devices/"+url.PathEscape(deviceID), nil, &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDevice removes a device record from the ACS.
func (g *Gateway) DeleteDevice(ctx context.Context, deviceID string) error {
	return g.delete(ctx, "delete device", "/devices/"+url.PathEscape(deviceID))
}

// CountDevices returns the number of devices matching the query. The NBI
// reports the count in the X-Total-Count header of a HEAD response; a missing
// or malformed header counts as 0.
func (g *Gateway) CountDevices(ctx context.Context, query string) (int, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	resp, err := g.do(ctx, "count devices", http.MethodHead, "/devices", q, nil, "", nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(resp.Header.Get("X-Total-Count"))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// FindBySerialSuffix searches for devices whose id ends with the given serial
// number. Device ids have the form OUI-ProductClass-Serial, so a suffix match
// on "-{serial}$" locates a device when only the serial is known.
func (g *Gateway) FindBySerialSuffix(ctx context.Context, serial string) ([]tree.Document, error) {
	return g.ListDevices(ctx, `{"_id":{"$regex":".*-`+serial+`$"}}`, "")
}
