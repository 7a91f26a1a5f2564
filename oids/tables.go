// Package oids holds the per-vendor OID registry. Adding a vendor means
// supplying a complete Table here and one branch in the index codec;
// no other component changes.
package oids

import (
	"fmt"
	"strings"

	"github.com/fiberwatch/oltpoll/types"
)

// Table maps semantic field names to base OIDs for one vendor. Values
// are immutable after process start. Scalar system-metric OIDs are
// empty for Huawei-style devices, which only expose metrics per line
// card (the poller walks the board tables instead).
type Table struct {
	Vendor types.Vendor

	// System health scalars (non-Huawei-style vendors only)
	SysCPU  string
	SysMem  string
	SysTemp string

	// Line-card ("board") tables, rows keyed by frame.slot
	BoardCPU    string
	BoardMem    string
	BoardTemp   string
	BoardType   string
	BoardStatus string

	// Standard interface tables (RFC 1213 / IF-MIB)
	IfDescr      string
	IfOperStatus string
	IfSpeed      string
	IfAlias      string

	// VLAN name table, rows keyed by VLAN ID
	VlanName string

	// PON port tables, rows keyed by port index
	PonPortStatus string
	PonOnuCount   string

	// ONU tables, rows keyed by the vendor's composite index suffix
	OnuSerialNumber string
	OnuDescription  string
	OnuStatus       string
	OnuRxPower      string
	OnuTxPower      string
	OnuDistance     string
}

// Standard MIB-II system OIDs (RFC 1213), identical across vendors.
const (
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0"
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0"
)

// huaweiTable covers SmartAX MA5600T/MA5800-X series GPON OLTs.
// Enterprise prefix 1.3.6.1.4.1.2011.
var huaweiTable = Table{
	Vendor: types.VendorHuawei,

	// CPU/memory/temperature are per line card on SmartAX; no
	// system-wide scalars exist.
	BoardCPU:    "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.5",
	BoardMem:    "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.6",
	BoardTemp:   "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.10",
	BoardType:   "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.2",
	BoardStatus: "1.3.6.1.4.1.2011.2.6.7.1.1.2.1.7",

	IfDescr:      "1.3.6.1.2.1.2.2.1.2",
	IfOperStatus: "1.3.6.1.2.1.2.2.1.8",
	IfSpeed:      "1.3.6.1.2.1.31.1.1.1.15", // ifHighSpeed, Mbps
	IfAlias:      "1.3.6.1.2.1.31.1.1.1.18",

	VlanName: "1.3.6.1.4.1.2011.5.6.1.1.1.2",

	PonPortStatus: "1.3.6.1.4.1.2011.6.128.1.1.2.21.1.2",
	PonOnuCount:   "1.3.6.1.4.1.2011.6.128.1.1.2.21.1.15",

	// ONU info table 2011.6.128.1.1.2.43, optical table .51
	OnuSerialNumber: "1.3.6.1.4.1.2011.6.128.1.1.2.43.1.3",
	OnuDescription:  "1.3.6.1.4.1.2011.6.128.1.1.2.43.1.9",
	OnuStatus:       "1.3.6.1.4.1.2011.6.128.1.1.2.46.1.15",
	OnuRxPower:      "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.4",
	OnuTxPower:      "1.3.6.1.4.1.2011.6.128.1.1.2.51.1.3",
	OnuDistance:     "1.3.6.1.4.1.2011.6.128.1.1.2.43.1.12",
}

// zteTable covers ZXA10 C6xx series (C620/C650) GPON OLTs.
// Enterprise prefix 1.3.6.1.4.1.3902.
var zteTable = Table{
	Vendor: types.VendorZTE,

	SysCPU:  "1.3.6.1.4.1.3902.1082.10.10.2.1.1.2.1",
	SysMem:  "1.3.6.1.4.1.3902.1082.10.10.2.1.1.3.1",
	SysTemp: "1.3.6.1.4.1.3902.1082.10.10.2.1.1.4.1",

	BoardCPU:    "1.3.6.1.4.1.3902.1082.10.10.2.2.1.2",
	BoardMem:    "1.3.6.1.4.1.3902.1082.10.10.2.2.1.3",
	BoardTemp:   "1.3.6.1.4.1.3902.1082.10.10.2.2.1.4",
	BoardType:   "1.3.6.1.4.1.3902.1082.10.10.2.2.1.1",
	BoardStatus: "1.3.6.1.4.1.3902.1082.10.10.2.2.1.5",

	IfDescr:      "1.3.6.1.2.1.2.2.1.2",
	IfOperStatus: "1.3.6.1.2.1.2.2.1.8",
	IfSpeed:      "1.3.6.1.2.1.31.1.1.1.15",
	IfAlias:      "1.3.6.1.2.1.31.1.1.1.18",

	VlanName: "1.3.6.1.4.1.3902.1082.30.10.1.1.2",

	PonPortStatus: "1.3.6.1.4.1.3902.1082.500.4.2.1.1.1",
	PonOnuCount:   "1.3.6.1.4.1.3902.1082.500.4.2.1.4.1",

	OnuSerialNumber: "1.3.6.1.4.1.3902.1082.500.10.2.3.3.1.6",
	OnuDescription:  "1.3.6.1.4.1.3902.1082.500.10.2.3.3.1.2",
	OnuStatus:       "1.3.6.1.4.1.3902.1082.500.10.2.3.8.1.4",
	OnuRxPower:      "1.3.6.1.4.1.3902.1082.500.20.2.2.2.1.10",
	OnuTxPower:      "1.3.6.1.4.1.3902.1082.500.20.2.2.2.1.11",
	OnuDistance:     "1.3.6.1.4.1.3902.1082.500.10.2.3.8.1.13",
}

// Lookup returns the OID table for a vendor.
func Lookup(vendor types.Vendor) (Table, error) {
	switch vendor {
	case types.VendorHuawei:
		return huaweiTable, nil
	case types.VendorZTE:
		return zteTable, nil
	default:
		return Table{}, fmt.Errorf("unsupported vendor: %s", vendor)
	}
}

// Result looks up an OID in walk/get results, tolerating the leading
// dot gosnmp puts on varbind names.
func Result(results map[string]interface{}, oid string) (interface{}, bool) {
	if results == nil {
		return nil, false
	}
	if v, ok := results[oid]; ok {
		return v, true
	}
	if strings.HasPrefix(oid, ".") {
		if v, ok := results[strings.TrimPrefix(oid, ".")]; ok {
			return v, true
		}
		return nil, false
	}
	v, ok := results["."+oid]
	return v, ok
}
