package poller

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fiberwatch/oltpoll/codec"
	"github.com/fiberwatch/oltpoll/metrics"
	"github.com/fiberwatch/oltpoll/oids"
	"github.com/fiberwatch/oltpoll/types"
	"github.com/fiberwatch/oltpoll/validity"
)

// noDescription is what a discovered ONU reports when the operator left
// the description column empty.
const noDescription = "no description"

// DiscoverOnus walks the serial number table and joins the status and
// description tables against the same row suffixes. The serial walk is
// the anchor: if it fails, discovery returns empty — there is no
// partial reconstruction without serials. The other walks are
// independently fault-tolerant.
func (e *Engine) DiscoverOnus(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) ([]types.DiscoveredOnu, types.Warnings) {
	start := time.Now()
	var warnings types.Warnings

	table, err := e.table(vendor)
	if err != nil {
		warnings.Add("discovery: %v", err)
		metrics.ObservePoll("discover", string(vendor), true, time.Since(start))
		return nil, warnings
	}
	conn := e.dial(ep)

	serialRows, err := conn.Walk(ctx, table.OnuSerialNumber)
	if err != nil {
		e.log.Warn("serial number walk failed",
			zap.String("host", ep.Host), zap.String("vendor", string(vendor)), zap.Error(err))
		warnings.Add("discovery: serial walk failed: %v", err)
		metrics.ObservePoll("discover", string(vendor), true, time.Since(start))
		return nil, warnings
	}

	statusRows := e.walkTolerant(ctx, conn, "discover", vendor, table.OnuStatus, &warnings)
	descrRows := e.walkTolerant(ctx, conn, "discover", vendor, table.OnuDescription, &warnings)

	onus := make([]types.DiscoveredOnu, 0, len(serialRows))
	for oid, v := range serialRows {
		suffixStr, ok := codec.SuffixString(table.OnuSerialNumber, oid)
		if !ok {
			continue
		}
		suffix, ok := codec.SuffixInts(table.OnuSerialNumber, oid)
		if !ok {
			continue
		}
		serial, ok := asString(v)
		if !ok || serial == "" {
			continue
		}

		idx := codec.DecodeIndex(vendor, suffix)
		onu := types.DiscoveredOnu{
			SerialNumber:   NormalizeSerial(serial),
			PonPort:        idx.PonPort,
			OnuID:          idx.OnuID,
			Status:         types.OnuOffline,
			RawIndexSuffix: suffixStr,
		}

		if sv, ok := oids.Result(statusRows, codec.Sibling(table.OnuStatus, suffixStr)); ok {
			if code, ok := asInt64(sv); ok {
				onu.Status = onuStatusFromCode(vendor, code)
			}
		}
		if table.OnuDescription != "" {
			onu.Description = noDescription
			if dv, ok := oids.Result(descrRows, codec.Sibling(table.OnuDescription, suffixStr)); ok {
				if descr, ok := asString(dv); ok {
					if trimmed := strings.TrimSpace(descr); trimmed != "" {
						onu.Description = trimmed
					}
				}
			}
		}
		onus = append(onus, onu)
	}

	metrics.ObservePoll("discover", string(vendor), false, time.Since(start))
	return onus, warnings
}

// BulkPollOpticalPower merges the status, RX power, TX power and
// distance table walks into one map keyed by "ponPort.onuId". Each walk
// is independently fault-tolerant. Power readings arrive in hundredths
// of a dBm; readings that fail validation are left absent rather than
// zero-filled, while status is written for every decodable code.
func (e *Engine) BulkPollOpticalPower(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) (map[string]*types.OpticalSample, types.Warnings) {
	const op = "bulk_optical"
	start := time.Now()
	var warnings types.Warnings

	table, err := e.table(vendor)
	if err != nil {
		warnings.Add("%s: %v", op, err)
		metrics.ObservePoll(op, string(vendor), true, time.Since(start))
		return map[string]*types.OpticalSample{}, warnings
	}
	conn := e.dial(ep)

	statusRows := e.walkTolerant(ctx, conn, op, vendor, table.OnuStatus, &warnings)
	rxRows := e.walkTolerant(ctx, conn, op, vendor, table.OnuRxPower, &warnings)
	txRows := e.walkTolerant(ctx, conn, op, vendor, table.OnuTxPower, &warnings)
	distRows := e.walkTolerant(ctx, conn, op, vendor, table.OnuDistance, &warnings)

	samples := make(map[string]*types.OpticalSample)
	sample := func(base, oid string) *types.OpticalSample {
		suffix, ok := codec.SuffixInts(base, oid)
		if !ok {
			return nil
		}
		idx := codec.DecodeIndex(vendor, suffix)
		key := idx.Key()
		s, ok := samples[key]
		if !ok {
			s = &types.OpticalSample{PonPort: idx.PonPort, OnuID: idx.OnuID}
			samples[key] = s
		}
		return s
	}

	for oid, v := range statusRows {
		s := sample(table.OnuStatus, oid)
		if s == nil {
			continue
		}
		if code, ok := asInt64(v); ok {
			status := onuStatusFromCode(vendor, code)
			s.Status = &status
		}
	}
	for oid, v := range rxRows {
		s := sample(table.OnuRxPower, oid)
		if s == nil {
			continue
		}
		if dbm, ok := opticalDbm(v); ok {
			s.RxPowerDbm = &dbm
		}
	}
	for oid, v := range txRows {
		s := sample(table.OnuTxPower, oid)
		if s == nil {
			continue
		}
		if dbm, ok := opticalDbm(v); ok {
			s.TxPowerDbm = &dbm
		}
	}
	for oid, v := range distRows {
		s := sample(table.OnuDistance, oid)
		if s == nil {
			continue
		}
		if raw, ok := asInt64(v); ok && validity.Raw(raw) {
			meters := int(raw)
			if validity.DistanceMeters(meters) {
				s.DistanceMeters = &meters
			}
		}
	}

	metrics.ObservePoll(op, string(vendor), false, time.Since(start))
	return samples, warnings
}

// opticalDbm converts a raw hundredths-of-a-dBm reading, rejecting
// wire sentinels and out-of-domain power.
func opticalDbm(value interface{}) (float64, bool) {
	raw, ok := asInt64(value)
	if !ok || !validity.Raw(raw) {
		return 0, false
	}
	dbm := float64(raw) / 100
	if !validity.OpticalDbm(dbm) {
		return 0, false
	}
	return dbm, true
}

// NormalizeSerial renders ONU serials in the conventional
// vendor-prefix form. Huawei serial columns mix plain ASCII
// ("HWTC0011D168") with binary payloads the value decoder has already
// hex-encoded ("485754430011D168"); when the first eight hex digits
// decode to four printable ASCII letters, that prefix is rendered as
// text.
func NormalizeSerial(serial string) string {
	if len(serial) < 12 || isVendorPrefix(serial[:4]) {
		return serial
	}
	var prefix [4]byte
	for i := 0; i < 8; i += 2 {
		hi, ok1 := hexNibble(serial[i])
		lo, ok2 := hexNibble(serial[i+1])
		if !ok1 || !ok2 {
			return serial
		}
		prefix[i/2] = hi<<4 | lo
	}
	if !isVendorPrefix(string(prefix[:])) {
		return serial
	}
	return string(prefix[:]) + serial[8:]
}

// isVendorPrefix reports whether s is a four-letter uppercase ONU
// vendor ID such as HWTC or ZTEG.
func isVendorPrefix(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
