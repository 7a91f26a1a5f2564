// Package codec decodes the vendor-specific composite suffix an OLT
// appends to a table base OID into the canonical (ponPort, onuId)
// pair. Decoding is pure and deterministic so it can be validated from
// literal suffix arrays with no device access.
package codec

import (
	"strconv"
	"strings"

	"github.com/fiberwatch/oltpoll/types"
)

// HuaweiIfIndexBase is the offset Huawei SmartAX firmware adds to GPON
// ifIndex values. The (slot, port) layout below it is an empirically
// inferred heuristic, not a documented contract; validate it per
// firmware family before trusting a new hardware line.
const HuaweiIfIndexBase = 4194304000

// huaweiPortsPerSlot is the PON ports-per-card factor used to flatten
// (slot, port) into a single ponPort number.
const huaweiPortsPerSlot = 8

// DecodeIndex maps a table row suffix to the canonical composite
// index. Every branch clamps ponPort into [0,255] and onuId into
// [1,255].
func DecodeIndex(vendor types.Vendor, suffix []int) types.CompositeIndex {
	var idx types.CompositeIndex

	switch vendor {
	case types.VendorHuawei:
		idx = decodeHuawei(suffix)
	default:
		idx = decodeDirect(suffix)
	}

	idx.PonPort = clamp(idx.PonPort, 0, 255)
	idx.OnuID = clamp(idx.OnuID, 1, 255)
	return idx
}

func decodeHuawei(suffix []int) types.CompositeIndex {
	switch len(suffix) {
	case 2:
		// ifIndex.onuId with slot/port packed into the ifIndex
		ifIndex := suffix[0]
		var ponPort int
		if ifIndex >= HuaweiIfIndexBase {
			offset := ifIndex - HuaweiIfIndexBase
			slot := (offset / 65536) % 256
			port := (offset % 65536) / 256 % 256
			ponPort = slot*huaweiPortsPerSlot + port
		} else {
			// legacy firmware without the 4194304000 offset
			ponPort = (ifIndex / 256) % 256
		}
		return types.CompositeIndex{PonPort: ponPort, OnuID: suffix[1]}
	case 4:
		// frame.slot.port.onuId
		slot, port := suffix[1], suffix[2]
		return types.CompositeIndex{PonPort: slot*huaweiPortsPerSlot + port, OnuID: suffix[3]}
	case 1:
		// degenerate single-element rows seen on some firmware
		return types.CompositeIndex{PonPort: 1, OnuID: suffix[0] % 256}
	default:
		return types.CompositeIndex{}
	}
}

// decodeDirect handles ZTE-style suffixes where the first two elements
// are ponPort.onuId. Longer suffixes carry trailing service indexes
// (e.g. the C6xx optical table appends a GEM index) and are ignored.
func decodeDirect(suffix []int) types.CompositeIndex {
	if len(suffix) < 2 {
		if len(suffix) == 1 {
			return types.CompositeIndex{PonPort: 1, OnuID: suffix[0] % 256}
		}
		return types.CompositeIndex{}
	}
	return types.CompositeIndex{PonPort: suffix[0], OnuID: suffix[1]}
}

// EncodeIndex is the inverse of DecodeIndex for the 2-element layouts,
// used to derive a table row suffix from a known (ponPort, onuId).
func EncodeIndex(vendor types.Vendor, idx types.CompositeIndex) []int {
	switch vendor {
	case types.VendorHuawei:
		slot := idx.PonPort / huaweiPortsPerSlot
		port := idx.PonPort % huaweiPortsPerSlot
		return []int{HuaweiIfIndexBase + slot*65536 + port*256, idx.OnuID}
	default:
		return []int{idx.PonPort, idx.OnuID}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SuffixInts strips base from a full walked OID and parses the
// remaining dotted elements. Returns false when the OID is not under
// base or a component is not numeric.
func SuffixInts(base, oid string) ([]int, bool) {
	raw, ok := SuffixString(base, oid)
	if !ok {
		return nil, false
	}
	parts := strings.Split(raw, ".")
	suffix := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		suffix = append(suffix, n)
	}
	return suffix, true
}

// SuffixString strips base (dot-tolerant on both sides) and returns the
// raw dotted suffix.
func SuffixString(base, oid string) (string, bool) {
	base = strings.TrimPrefix(base, ".")
	oid = strings.TrimPrefix(oid, ".")
	if !strings.HasPrefix(oid, base+".") {
		return "", false
	}
	suffix := strings.TrimPrefix(oid, base+".")
	if suffix == "" {
		return "", false
	}
	return suffix, true
}

// Sibling substitutes another table's base OID for the same row
// suffix, deriving the address of a sibling column.
func Sibling(base, suffix string) string {
	return strings.TrimPrefix(base, ".") + "." + suffix
}
