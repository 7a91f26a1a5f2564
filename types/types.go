package types

import (
	"fmt"
	"time"
)

// Vendor identifies the OLT vendor family. Vendor selection picks an OID
// table and an index-codec branch; no other component changes per vendor.
type Vendor string

const (
	VendorHuawei Vendor = "huawei"
	VendorZTE    Vendor = "zte"
)

// SNMPVersion is the protocol version used for an endpoint.
type SNMPVersion string

const (
	SNMPVersion1  SNMPVersion = "1"
	SNMPVersion2c SNMPVersion = "2c"
)

// DeviceEndpoint describes how to reach one OLT. It is supplied by the
// caller per operation and never stored by the engine.
type DeviceEndpoint struct {
	// Host is the management IP or hostname
	Host string

	// Port is the SNMP port (defaults to 161)
	Port int

	// Community is the SNMP community string
	Community string

	// Version is the SNMP version (defaults to 2c)
	Version SNMPVersion

	// Timeout for each individual exchange
	Timeout time.Duration

	// Retries is the per-exchange retry count
	Retries int
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (e DeviceEndpoint) WithDefaults() DeviceEndpoint {
	if e.Port <= 0 || e.Port > 65535 {
		e.Port = 161
	}
	if e.Community == "" {
		e.Community = "public"
	}
	if e.Version == "" {
		e.Version = SNMPVersion2c
	}
	if e.Timeout <= 0 {
		e.Timeout = 5 * time.Second
	}
	if e.Retries < 0 {
		e.Retries = 1
	}
	return e
}

// OnuStatus is the canonical ONU operational state.
type OnuStatus string

const (
	OnuOnline  OnuStatus = "online"
	OnuOffline OnuStatus = "offline"
	OnuLOS     OnuStatus = "los"
)

// CompositeIndex is the canonical (ponPort, onuId) pair decoded from a
// vendor-specific table row suffix. PonPort is clamped to [0,255] and
// OnuID to [1,255] by the codec; callers never construct one directly.
type CompositeIndex struct {
	PonPort int
	OnuID   int
}

// Key renders the "ponPort.onuId" composite key used to merge
// independently walked tables.
func (c CompositeIndex) Key() string {
	return fmt.Sprintf("%d.%d", c.PonPort, c.OnuID)
}

// DiscoveredOnu is one subscriber terminal found by walking the serial
// number table.
type DiscoveredOnu struct {
	// SerialNumber is the decoded serial (uppercase hex if the raw
	// payload was binary)
	SerialNumber string

	PonPort int
	OnuID   int
	Status  OnuStatus

	// Description is the operator-assigned label, "no description"
	// when the device returns an empty string
	Description string

	// RawIndexSuffix is the table row suffix as returned by the
	// device, kept for diagnostics
	RawIndexSuffix string
}

// OpticalSample holds per-ONU optical telemetry. Pointer fields are nil
// when the reading was not retrieved or failed validation; absence
// means unknown, never zero.
type OpticalSample struct {
	PonPort int
	OnuID   int

	RxPowerDbm     *float64
	TxPowerDbm     *float64
	DistanceMeters *int
	Status         *OnuStatus
}

// BoardOperStatus is the canonical line-card state.
type BoardOperStatus string

const (
	BoardNormal  BoardOperStatus = "normal"
	BoardFault   BoardOperStatus = "fault"
	BoardUnknown BoardOperStatus = "unknown"
)

// BoardRecord describes one line card, keyed by (frame, slot).
type BoardRecord struct {
	Frame      int
	Slot       int
	BoardType  string
	OperStatus BoardOperStatus

	CpuPct *float64
	MemPct *float64
	TempC  *float64
}

// UplinkRecord describes one uplink-style physical interface.
type UplinkRecord struct {
	PortLabel  string
	Alias      string
	OperStatus string // "up" or "down"
	SpeedMbps  *int
}

// VlanRecord is one VLAN table row; IDs outside [1,4094] are discarded
// before a record is ever built.
type VlanRecord struct {
	VlanID int
	Name   string
}

// PonPortRecord describes one PON port and its occupancy.
type PonPortRecord struct {
	Port       int
	OnuCount   int
	OperStatus string // "up" or "down"
}

// OltSystemInfo is the normalized system-identity and health snapshot.
type OltSystemInfo struct {
	SysName          string
	SysDescr         string
	SysUptimeSeconds int64

	// FirmwareVersion is regex-extracted from SysDescr when present
	FirmwareVersion string

	CpuPct *float64
	MemPct *float64
	TempC  *float64
}

// OltDetailedInfo aggregates system info with the board, uplink, VLAN
// and PON port tables. Sequences are best-effort: a failed sub-walk
// leaves its slice empty and appends a warning.
type OltDetailedInfo struct {
	System OltSystemInfo

	Boards   []BoardRecord
	Uplinks  []UplinkRecord
	Vlans    []VlanRecord
	PonPorts []PonPortRecord

	Warnings Warnings
}

// Warnings accumulates non-fatal sub-query failures inside an aggregate
// operation so partial-failure information is inspectable by callers.
type Warnings []string

// Add appends a formatted warning.
func (w *Warnings) Add(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// TransportError reports a session or total-retry failure talking to an
// endpoint. Per-address protocol errors are not transport errors; those
// addresses are simply absent from results.
type TransportError struct {
	Host string
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("snmp %s %s: %v", e.Op, e.Host, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
