// Package schema declares the parameter paths the bridge reads from managed
// devices and normalizes them into stable display groups.
//
// Every attribute exists under (at most) two incompatible namespace roots:
// the modern "Device." root and the legacy "InternetGatewayDevice." root.
// Each label therefore maps to an ordered candidate list, most likely first,
// and resolution takes the first path that yields a value.
package schema

import "fmt"

// Group is an ordered mapping of display label to candidate parameter paths.
type Group struct {
	Name   string
	Labels []Label
}

// Label binds a display label to its ordered candidate paths.
type Label struct {
	Name       string
	Candidates []string
}

// SystemGroup covers device identity and health.
var SystemGroup = Group{
	Name: "system",
	Labels: []Label{
		{"Manufacturer", []string{
			"InternetGatewayDevice.DeviceInfo.Manufacturer",
			"Device.DeviceInfo.Manufacturer",
		}},
		{"Model", []string{
			"InternetGatewayDevice.DeviceInfo.ModelName",
			"Device.DeviceInfo.ModelName",
		}},
		{"Serial Number", []string{
			"InternetGatewayDevice.DeviceInfo.SerialNumber",
			"Device.DeviceInfo.SerialNumber",
		}},
		{"Hardware Version", []string{
			"InternetGatewayDevice.DeviceInfo.HardwareVersion",
			"Device.DeviceInfo.HardwareVersion",
		}},
		{"Software Version", []string{
			"InternetGatewayDevice.DeviceInfo.SoftwareVersion",
			"Device.DeviceInfo.SoftwareVersion",
		}},
		{"Uptime", []string{
			"InternetGatewayDevice.DeviceInfo.UpTime",
			"Device.DeviceInfo.UpTime",
		}},
		{"Memory Total", []string{
			"InternetGatewayDevice.DeviceInfo.MemoryStatus.Total",
			"Device.DeviceInfo.MemoryStatus.Total",
		}},
		{"Memory Free", []string{
			"InternetGatewayDevice.DeviceInfo.MemoryStatus.Free",
			"Device.DeviceInfo.MemoryStatus.Free",
		}},
		{"CPU Usage", []string{
			"InternetGatewayDevice.DeviceInfo.ProcessStatus.CPUUsage",
			"Device.DeviceInfo.ProcessStatus.CPUUsage",
		}},
	},
}

// WANGroup covers the upstream connection.
var WANGroup = Group{
	Name: "wan",
	Labels: []Label{
		{"Connection Type", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ConnectionType",
			"Device.PPP.Interface.1.ConnectionStatus",
		}},
		{"WAN IP", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ExternalIPAddress",
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANIPConnection.1.ExternalIPAddress",
			"Device.IP.Interface.1.IPv4Address.1.IPAddress",
		}},
		{"PPPoE Username", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username",
			"Device.PPP.Interface.1.Username",
		}},
		{"Connection Status", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ConnectionStatus",
			"Device.PPP.Interface.1.ConnectionStatus",
		}},
		{"Default Gateway", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.DefaultGateway",
			"Device.Routing.Router.1.IPv4Forwarding.1.GatewayIPAddress",
		}},
		{"DNS Servers", []string{
			"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.DNSServers",
			"Device.DNS.Client.Server.1.DNSServer",
		}},
		{"RX Power", []string{
			"InternetGatewayDevice.WANDevice.1.X_GponInterafceConfig.RXPower",
			"InternetGatewayDevice.WANDevice.1.X_CT-COM_GponInterfaceConfig.RXPower",
			"Device.Optical.Interface.1.RxPower",
		}},
		{"TX Power", []string{
			"InternetGatewayDevice.WANDevice.1.X_GponInterafceConfig.TXPower",
			"InternetGatewayDevice.WANDevice.1.X_CT-COM_GponInterfaceConfig.TXPower",
			"Device.Optical.Interface.1.TxPower",
		}},
	},
}

// LANGroup covers the customer-side network.
var LANGroup = Group{
	Name: "lan",
	Labels: []Label{
		{"LAN IP", []string{
			"InternetGatewayDevice.LANDevice.1.LANHostConfigManagement.IPInterface.1.IPInterfaceIPAddress",
			"Device.IP.Interface.2.IPv4Address.1.IPAddress",
		}},
		{"Subnet Mask", []string{
			"InternetGatewayDevice.LANDevice.1.LANHostConfigManagement.IPInterface.1.IPInterfaceSubnetMask",
			"Device.IP.Interface.2.IPv4Address.1.SubnetMask",
		}},
		{"DHCP Enabled", []string{
			"InternetGatewayDevice.LANDevice.1.LANHostConfigManagement.DHCPServerEnable",
			"Device.DHCPv4.Server.Enable",
		}},
		{"DHCP Range Start", []string{
			"InternetGatewayDevice.LANDevice.1.LANHostConfigManagement.MinAddress",
			"Device.DHCPv4.Server.Pool.1.MinAddress",
		}},
		{"DHCP Range End", []string{
			"InternetGatewayDevice.LANDevice.1.LANHostConfigManagement.MaxAddress",
			"Device.DHCPv4.Server.Pool.1.MaxAddress",
		}},
		{"Connected Hosts", []string{
			"InternetGatewayDevice.LANDevice.1.Hosts.HostNumberOfEntries",
			"Device.Hosts.HostNumberOfEntries",
		}},
	},
}

// WirelessGroup covers the primary WiFi radio.
var WirelessGroup = Group{
	Name: "wireless",
	Labels: []Label{
		{"SSID", []string{
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
			"Device.WiFi.SSID.1.SSID",
		}},
		{"Enabled", []string{
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Enable",
			"Device.WiFi.SSID.1.Enable",
		}},
		{"Channel", []string{
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Channel",
			"Device.WiFi.Radio.1.Channel",
		}},
		{"Security Mode", []string{
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.BeaconType",
			"Device.WiFi.AccessPoint.1.Security.ModeEnabled",
		}},
		{"Associated Clients", []string{
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.TotalAssociations",
			"Device.WiFi.AccessPoint.1.AssociatedDeviceNumberOfEntries",
		}},
	},
}

// Groups lists all display groups in presentation order.
var Groups = []Group{SystemGroup, WANGroup, LANGroup, WirelessGroup}

// Writable parameter pairs. Writes target BOTH roots simultaneously because
// it is unknown in advance which root the physical device honors; this is
// deliberately not a fallback.
var (
	SSIDPaths = []string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		"Device.WiFi.SSID.1.SSID",
	}
	WifiPasswordPaths = []string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		"Device.WiFi.AccessPoint.1.Security.KeyPassphrase",
	}
)

// LanPortPaths returns the enable-flag paths for a numbered LAN port under
// both roots.
func LanPortPaths(port int) []string {
	return []string{
		fmt.Sprintf("InternetGatewayDevice.LANDevice.1.LANEthernetInterfaceConfig.%d.Enable", port),
		fmt.Sprintf("Device.Ethernet.Interface.%d.Enable", port),
	}
}

// Host table enumeration bases, modern root last to match read fallback order.
var HostTableBases = []string{
	"InternetGatewayDevice.LANDevice.1.Hosts.Host",
	"Device.Hosts.Host",
}

// HostFields are the per-host fields extracted during enumeration.
var HostFields = []string{"HostName", "IPAddress", "MACAddress", "Active"}
