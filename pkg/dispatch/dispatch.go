// Package dispatch composes the directory, the ACS gateway, and the
// parameter schema into user-facing management verbs.
//
// Every verb returns a uniform Result and never an error: failures surface
// as a failed Result with a human message, because callers render these
// inline rather than handling error types.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelayoade/ontbridge/pkg/audit"
	"github.com/michaelayoade/ontbridge/pkg/directory"
	"github.com/michaelayoade/ontbridge/pkg/schema"
	"github.com/michaelayoade/ontbridge/pkg/tree"
	"github.com/michaelayoade/ontbridge/pkg/util"
)

// Messages rendered verbatim to the operator.
const (
	MsgOntNotFound = "ONT not found"
	MsgNoACS       = "No GenieACS server configured for this ONT."
)

// Ont is the internally tracked device identity the bridge manages. The full
// CPE record lives outside this core; only the lookup is consumed here.
type Ont struct {
	ID           string
	SerialNumber string
	Name         string
}

// OntLookup resolves an internal ONT id to its identity.
type OntLookup interface {
	GetONT(ctx context.Context, id string) (*Ont, error)
}

// Result is the uniform outcome of a dispatcher verb.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Dispatcher executes management verbs against resolved devices.
type Dispatcher struct {
	onts  OntLookup
	dir   *directory.Directory
	actor string
}

// New creates a dispatcher. actor names the caller in audit events.
func New(onts OntLookup, dir *directory.Directory, actor string) *Dispatcher {
	return &Dispatcher{onts: onts, dir: dir, actor: actor}
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

func success(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// resolve looks up the ONT and its management target. A nil Result pointer
// means both succeeded.
func (d *Dispatcher) resolve(ctx context.Context, ontID string) (*directory.Target, *Ont, *Result) {
	ont, err := d.onts.GetONT(ctx, ontID)
	if err != nil {
		r := failure(MsgOntNotFound)
		return nil, nil, &r
	}
	target, ok := d.dir.Resolve(ctx, ont.SerialNumber)
	if !ok {
		r := failure(MsgNoACS)
		return nil, nil, &r
	}
	return target, ont, nil
}

func (d *Dispatcher) record(action string, ont *Ont, res Result, meta map[string]interface{}) {
	event := audit.NewEvent(d.actor, action, "ont:"+ont.ID)
	for k, v := range meta {
		event.WithMetadata(k, v)
	}
	if res.Success {
		event.WithSuccess()
	} else {
		event.WithError(fmt.Errorf("%s", res.Message))
	}
	if err := audit.Log(event); err != nil {
		util.Warnf("dispatch: audit log failed: %v", err)
	}
}

// Reboot queues a reboot on the device.
func (d *Dispatcher) Reboot(ctx context.Context, ontID string) Result {
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	data, err := target.Gateway.Reboot(ctx, target.DeviceID)
	res := wrap(err, "Reboot requested", data)
	d.record("reboot", ont, res, nil)
	return res
}

// RefreshStatus asks the ACS to re-read the device's entire parameter tree.
func (d *Dispatcher) RefreshStatus(ctx context.Context, ontID string) Result {
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	data, err := target.Gateway.RefreshObject(ctx, target.DeviceID, "")
	res := wrap(err, "Status refresh requested", data)
	d.record("refresh-status", ont, res, nil)
	return res
}

// FactoryReset queues a factory reset on the device.
func (d *Dispatcher) FactoryReset(ctx context.Context, ontID string) Result {
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	data, err := target.Gateway.FactoryReset(ctx, target.DeviceID)
	res := wrap(err, "Factory reset requested", data)
	d.record("factory-reset", ont, res, nil)
	return res
}

// SetWifiSSID writes a new SSID to both namespace roots.
func (d *Dispatcher) SetWifiSSID(ctx context.Context, ontID, ssid string) Result {
	if len(ssid) < 1 || len(ssid) > 32 {
		return failure("SSID must be 1-32 characters")
	}
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	values := make(map[string]string, len(schema.SSIDPaths))
	for _, p := range schema.SSIDPaths {
		values[p] = ssid
	}
	data, err := target.Gateway.SetParameterValues(ctx, target.DeviceID, values)
	res := wrap(err, fmt.Sprintf("SSID changed to %q", ssid), data)
	d.record("set-wifi-ssid", ont, res, map[string]interface{}{"ssid": ssid})
	return res
}

// SetWifiPassword writes a new WiFi passphrase to both namespace roots.
func (d *Dispatcher) SetWifiPassword(ctx context.Context, ontID, password string) Result {
	if len(password) < 8 {
		return failure("WiFi password must be at least 8 characters")
	}
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	values := make(map[string]string, len(schema.WifiPasswordPaths))
	for _, p := range schema.WifiPasswordPaths {
		values[p] = password
	}
	data, err := target.Gateway.SetParameterValues(ctx, target.DeviceID, values)
	// The passphrase itself never reaches the audit log.
	res := wrap(err, "WiFi password changed", data)
	d.record("set-wifi-password", ont, res, nil)
	return res
}

// ToggleLanPort enables or disables a numbered LAN port on both roots.
func (d *Dispatcher) ToggleLanPort(ctx context.Context, ontID string, port int, enabled bool) Result {
	if port < 1 || port > 4 {
		return failure("LAN port must be 1-4")
	}
	target, ont, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	value := "false"
	verb := "disabled"
	if enabled {
		value = "true"
		verb = "enabled"
	}
	values := make(map[string]string, 2)
	for _, p := range schema.LanPortPaths(port) {
		values[p] = value
	}
	data, err := target.Gateway.SetParameterValues(ctx, target.DeviceID, values)
	res := wrap(err, fmt.Sprintf("LAN port %d %s", port, verb), data)
	d.record("toggle-lan-port", ont, res, map[string]interface{}{"port": port, "enabled": enabled})
	return res
}

// wrap folds an optional gateway error into a Result.
func wrap(err error, message string, data interface{}) Result {
	if err != nil {
		return failure(err.Error())
	}
	return success(message, data)
}

// runningConfigGroups are the fixed parameter sets GetRunningConfig reports,
// each path list spanning both namespace roots.
var runningConfigGroups = []struct {
	Name  string
	Paths []string
}{
	{"device_info", []string{
		"InternetGatewayDevice.DeviceInfo.Manufacturer",
		"InternetGatewayDevice.DeviceInfo.ModelName",
		"InternetGatewayDevice.DeviceInfo.SerialNumber",
		"InternetGatewayDevice.DeviceInfo.HardwareVersion",
		"InternetGatewayDevice.DeviceInfo.SoftwareVersion",
		"InternetGatewayDevice.DeviceInfo.UpTime",
		"Device.DeviceInfo.Manufacturer",
		"Device.DeviceInfo.ModelName",
		"Device.DeviceInfo.SerialNumber",
		"Device.DeviceInfo.HardwareVersion",
		"Device.DeviceInfo.SoftwareVersion",
		"Device.DeviceInfo.UpTime",
	}},
	{"wan", []string{
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ExternalIPAddress",
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username",
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ConnectionStatus",
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Uptime",
		"Device.PPP.Interface.1.Username",
		"Device.PPP.Interface.1.ConnectionStatus",
	}},
	{"optical", []string{
		"InternetGatewayDevice.WANDevice.1.X_GponInterafceConfig.RXPower",
		"InternetGatewayDevice.WANDevice.1.X_CT-COM_GponInterfaceConfig.RXPower",
		"InternetGatewayDevice.WANDevice.1.X_CT-COM_GponInterfaceConfig.TXPower",
		"Device.Optical.Interface.1.RxPower",
		"Device.Optical.Interface.1.TxPower",
	}},
	{"wifi", []string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Enable",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Channel",
		"Device.WiFi.SSID.1.SSID",
		"Device.WiFi.SSID.1.Enable",
		"Device.WiFi.Radio.1.Channel",
	}},
}

// GetRunningConfig fetches the device document and reports the fixed
// parameter groups, each keyed by the path's final segment. Whichever root
// resolves first wins a segment; unresolved paths are omitted.
func (d *Dispatcher) GetRunningConfig(ctx context.Context, ontID string) Result {
	target, _, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	doc, err := target.Gateway.GetDevice(ctx, target.DeviceID)
	if err != nil {
		return failure(err.Error())
	}

	config := make(map[string]map[string]interface{}, len(runningConfigGroups))
	for _, group := range runningConfigGroups {
		section := make(map[string]interface{})
		for _, path := range group.Paths {
			segs := strings.Split(path, ".")
			key := segs[len(segs)-1]
			if _, done := section[key]; done {
				continue
			}
			if v := tree.Extract(doc, path); v != nil {
				section[key] = v
			}
		}
		config[group.Name] = section
	}
	return success("Running configuration retrieved", config)
}

// Status resolves the device document and returns the normalized display
// groups with humanized system fields, plus the LAN host table.
func (d *Dispatcher) Status(ctx context.Context, ontID string) Result {
	target, _, fail := d.resolve(ctx, ontID)
	if fail != nil {
		return *fail
	}
	doc, err := target.Gateway.GetDevice(ctx, target.DeviceID)
	if err != nil {
		return failure(err.Error())
	}

	groups := make(map[string]map[string]interface{}, len(schema.Groups))
	for _, g := range schema.Groups {
		values := schema.ResolveGroup(doc, g)
		if g.Name == schema.SystemGroup.Name {
			schema.Humanize(values)
		}
		groups[g.Name] = values
	}

	hosts := tree.InstancesFirst(doc, schema.HostTableBases, schema.HostFields, tree.DefaultMaxInstances)
	return success("Status retrieved", map[string]interface{}{
		"groups": groups,
		"hosts":  hosts,
	})
}
