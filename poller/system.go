package poller

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fiberwatch/oltpoll/codec"
	"github.com/fiberwatch/oltpoll/metrics"
	"github.com/fiberwatch/oltpoll/oids"
	"github.com/fiberwatch/oltpoll/transport"
	"github.com/fiberwatch/oltpoll/types"
	"github.com/fiberwatch/oltpoll/validity"
)

// firmwareVersionRe extracts the firmware version from sysDescr, e.g.
// "Huawei Integrated Access Software. Version 8.150 ..." -> "8.150".
var firmwareVersionRe = regexp.MustCompile(`Version\s+([0-9]+(?:\.[0-9]+)*)`)

// uplinkDescrRe matches uplink-style physical port names: Huawei
// GigabitEthernet/XGigabitEthernet labels, ZTE gei_/xgei_ labels and
// generic Ethernet forms. PON ports never match.
var uplinkDescrRe = regexp.MustCompile(`(?i)^(xgigabitethernet|gigabitethernet|xgei|gei|xge|10ge|ge|ethernet)`)

// TestConnection fetches the system description; success means the
// endpoint answered with at least one value.
func (e *Engine) TestConnection(ctx context.Context, ep types.DeviceEndpoint) bool {
	start := time.Now()
	conn := e.dial(ep)

	results, err := conn.Get(ctx, []string{oids.OIDSysDescr})
	ok := err == nil && len(results) > 0
	metrics.ObservePoll("test_connection", "", !ok, time.Since(start))
	if err != nil {
		e.log.Warn("connection test failed", zap.String("host", ep.Host), zap.Error(err))
	}
	return ok
}

// GetSystemInfo returns the normalized system snapshot. Failure to
// fetch the standard identity scalars surfaces as an error; the health
// metrics degrade silently to absent.
func (e *Engine) GetSystemInfo(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) (*types.OltSystemInfo, error) {
	start := time.Now()
	info, err := e.systemInfo(ctx, ep, vendor)
	metrics.ObservePoll("system_info", string(vendor), err != nil, time.Since(start))
	return info, err
}

func (e *Engine) systemInfo(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) (*types.OltSystemInfo, error) {
	table, err := e.table(vendor)
	if err != nil {
		return nil, err
	}
	conn := e.dial(ep)

	results, err := conn.Get(ctx, []string{oids.OIDSysName, oids.OIDSysDescr, oids.OIDSysUpTime})
	if err != nil {
		return nil, err
	}

	info := &types.OltSystemInfo{}
	if v, ok := oids.Result(results, oids.OIDSysName); ok {
		info.SysName, _ = asString(v)
	}
	if v, ok := oids.Result(results, oids.OIDSysDescr); ok {
		info.SysDescr, _ = asString(v)
	}
	if v, ok := oids.Result(results, oids.OIDSysUpTime); ok {
		if ticks, ok := asInt64(v); ok {
			info.SysUptimeSeconds = ticks / 100
		}
	}
	if m := firmwareVersionRe.FindStringSubmatch(info.SysDescr); m != nil {
		info.FirmwareVersion = m[1]
	}

	if table.SysCPU != "" {
		e.systemMetricsScalar(ctx, conn, table, info)
	} else {
		e.systemMetricsFromBoards(ctx, conn, vendor, table, info)
	}
	return info, nil
}

// systemMetricsScalar fetches the three health scalars directly.
// A failed fetch leaves the fields absent.
func (e *Engine) systemMetricsScalar(ctx context.Context, conn transport.Conn, table oids.Table, info *types.OltSystemInfo) {
	results, err := conn.Get(ctx, []string{table.SysCPU, table.SysMem, table.SysTemp})
	if err != nil {
		e.log.Warn("system metrics fetch failed", zap.Error(err))
		return
	}
	info.CpuPct = validPercent(oidInt(results, table.SysCPU))
	info.MemPct = validPercent(oidInt(results, table.SysMem))
	info.TempC = validTemp(oidInt(results, table.SysTemp))
}

// systemMetricsFromBoards derives system health on vendors that only
// expose metrics per line card: walk the board tables and keep the
// maximum valid reading, which the active control board dominates.
func (e *Engine) systemMetricsFromBoards(ctx context.Context, conn transport.Conn, vendor types.Vendor, table oids.Table, info *types.OltSystemInfo) {
	walk := func(base string) map[string]interface{} {
		results, err := conn.Walk(ctx, base)
		if err != nil {
			e.log.Warn("board metric walk failed", zap.String("base", base), zap.Error(err))
			metrics.ObserveSubWalkFailure("system_info", string(vendor))
			return map[string]interface{}{}
		}
		return results
	}

	info.CpuPct = maxValid(walk(table.BoardCPU), validity.Percent)
	info.MemPct = maxValid(walk(table.BoardMem), validity.Percent)
	info.TempC = maxValid(walk(table.BoardTemp), validity.TemperatureC)
}

// GetOnuCount sums the per-PON-port ONU counters. Returns 0 on any
// failure, never an error.
func (e *Engine) GetOnuCount(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) int {
	start := time.Now()
	table, err := e.table(vendor)
	if err != nil {
		metrics.ObservePoll("onu_count", string(vendor), true, time.Since(start))
		return 0
	}
	conn := e.dial(ep)

	results, err := conn.Walk(ctx, table.PonOnuCount)
	if err != nil {
		e.log.Warn("onu count walk failed", zap.String("host", ep.Host), zap.Error(err))
		metrics.ObservePoll("onu_count", string(vendor), true, time.Since(start))
		return 0
	}

	total := 0
	for _, v := range results {
		if n, ok := asInt64(v); ok && n > 0 {
			total += int(n)
		}
	}
	metrics.ObservePoll("onu_count", string(vendor), false, time.Since(start))
	return total
}

// GetDetailedInfo walks the board, interface, VLAN and PON port tables
// on top of the system snapshot. Every sub-walk degrades independently;
// the call fails only when the standard system scalars do.
func (e *Engine) GetDetailedInfo(ctx context.Context, ep types.DeviceEndpoint, vendor types.Vendor) (*types.OltDetailedInfo, error) {
	start := time.Now()

	system, err := e.systemInfo(ctx, ep, vendor)
	if err != nil {
		metrics.ObservePoll("detailed_info", string(vendor), true, time.Since(start))
		return nil, err
	}
	table, err := e.table(vendor)
	if err != nil {
		metrics.ObservePoll("detailed_info", string(vendor), true, time.Since(start))
		return nil, err
	}
	conn := e.dial(ep)

	info := &types.OltDetailedInfo{System: *system}
	info.Boards = e.collectBoards(ctx, conn, vendor, table, &info.Warnings)
	info.Uplinks = e.collectUplinks(ctx, conn, vendor, table, &info.Warnings)
	info.Vlans = e.collectVlans(ctx, conn, vendor, table, &info.Warnings)
	info.PonPorts = e.collectPonPorts(ctx, conn, vendor, table, &info.Warnings)

	metrics.ObservePoll("detailed_info", string(vendor), false, time.Since(start))
	return info, nil
}

func (e *Engine) collectBoards(ctx context.Context, conn transport.Conn, vendor types.Vendor, table oids.Table, warnings *types.Warnings) []types.BoardRecord {
	const op = "detailed_info"
	typeRows := e.walkTolerant(ctx, conn, op, vendor, table.BoardType, warnings)
	statusRows := e.walkTolerant(ctx, conn, op, vendor, table.BoardStatus, warnings)
	cpuRows := e.walkTolerant(ctx, conn, op, vendor, table.BoardCPU, warnings)
	memRows := e.walkTolerant(ctx, conn, op, vendor, table.BoardMem, warnings)
	tempRows := e.walkTolerant(ctx, conn, op, vendor, table.BoardTemp, warnings)

	boards := make([]types.BoardRecord, 0, len(typeRows))
	for oid, v := range typeRows {
		suffixStr, ok := codec.SuffixString(table.BoardType, oid)
		if !ok {
			continue
		}
		suffix, ok := codec.SuffixInts(table.BoardType, oid)
		if !ok || len(suffix) < 2 {
			continue
		}
		frame := suffix[len(suffix)-2]
		slot := suffix[len(suffix)-1]

		board := types.BoardRecord{
			Frame:      frame,
			Slot:       slot,
			OperStatus: types.BoardUnknown,
		}
		board.BoardType, _ = asString(v)

		if sv, ok := oids.Result(statusRows, codec.Sibling(table.BoardStatus, suffixStr)); ok {
			if code, ok := asInt64(sv); ok {
				switch code {
				case 1:
					board.OperStatus = types.BoardNormal
				case 2:
					board.OperStatus = types.BoardFault
				}
			}
		}
		board.CpuPct = validPercent(siblingInt(cpuRows, table.BoardCPU, suffixStr))
		board.MemPct = validPercent(siblingInt(memRows, table.BoardMem, suffixStr))
		board.TempC = validTemp(siblingInt(tempRows, table.BoardTemp, suffixStr))

		boards = append(boards, board)
	}

	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Frame != boards[j].Frame {
			return boards[i].Frame < boards[j].Frame
		}
		return boards[i].Slot < boards[j].Slot
	})
	return boards
}

func (e *Engine) collectUplinks(ctx context.Context, conn transport.Conn, vendor types.Vendor, table oids.Table, warnings *types.Warnings) []types.UplinkRecord {
	const op = "detailed_info"
	descrRows := e.walkTolerant(ctx, conn, op, vendor, table.IfDescr, warnings)
	operRows := e.walkTolerant(ctx, conn, op, vendor, table.IfOperStatus, warnings)
	speedRows := e.walkTolerant(ctx, conn, op, vendor, table.IfSpeed, warnings)
	aliasRows := e.walkTolerant(ctx, conn, op, vendor, table.IfAlias, warnings)

	uplinks := make([]types.UplinkRecord, 0)
	for oid, v := range descrRows {
		descr, ok := asString(v)
		if !ok || !uplinkDescrRe.MatchString(strings.TrimSpace(descr)) {
			continue
		}
		suffixStr, ok := codec.SuffixString(table.IfDescr, oid)
		if !ok {
			continue
		}

		uplink := types.UplinkRecord{
			PortLabel:  strings.TrimSpace(descr),
			OperStatus: "down",
		}
		if sv, ok := oids.Result(operRows, codec.Sibling(table.IfOperStatus, suffixStr)); ok {
			if code, ok := asInt64(sv); ok && code == 1 {
				uplink.OperStatus = "up"
			}
		}
		if sv, ok := oids.Result(speedRows, codec.Sibling(table.IfSpeed, suffixStr)); ok {
			if speed, ok := asInt64(sv); ok && speed > 0 {
				mbps := int(speed)
				uplink.SpeedMbps = &mbps
			}
		}
		if sv, ok := oids.Result(aliasRows, codec.Sibling(table.IfAlias, suffixStr)); ok {
			alias, _ := asString(sv)
			uplink.Alias = strings.TrimSpace(alias)
		}
		uplinks = append(uplinks, uplink)
	}

	sort.Slice(uplinks, func(i, j int) bool {
		return uplinks[i].PortLabel < uplinks[j].PortLabel
	})
	return uplinks
}

func (e *Engine) collectVlans(ctx context.Context, conn transport.Conn, vendor types.Vendor, table oids.Table, warnings *types.Warnings) []types.VlanRecord {
	rows := e.walkTolerant(ctx, conn, "detailed_info", vendor, table.VlanName, warnings)

	vlans := make([]types.VlanRecord, 0, len(rows))
	for oid, v := range rows {
		suffix, ok := codec.SuffixInts(table.VlanName, oid)
		if !ok || len(suffix) == 0 {
			continue
		}
		id := suffix[len(suffix)-1]
		if !validity.VlanID(id) {
			continue
		}
		name, _ := asString(v)
		vlans = append(vlans, types.VlanRecord{VlanID: id, Name: strings.TrimSpace(name)})
	}

	sort.Slice(vlans, func(i, j int) bool { return vlans[i].VlanID < vlans[j].VlanID })
	return vlans
}

func (e *Engine) collectPonPorts(ctx context.Context, conn transport.Conn, vendor types.Vendor, table oids.Table, warnings *types.Warnings) []types.PonPortRecord {
	const op = "detailed_info"
	countRows := e.walkTolerant(ctx, conn, op, vendor, table.PonOnuCount, warnings)
	statusRows := e.walkTolerant(ctx, conn, op, vendor, table.PonPortStatus, warnings)

	ports := make([]types.PonPortRecord, 0, len(countRows))
	for oid, v := range countRows {
		suffixStr, ok := codec.SuffixString(table.PonOnuCount, oid)
		if !ok {
			continue
		}
		suffix, ok := codec.SuffixInts(table.PonOnuCount, oid)
		if !ok || len(suffix) == 0 {
			continue
		}

		record := types.PonPortRecord{
			Port:       suffix[len(suffix)-1],
			OperStatus: "down",
		}
		if n, ok := asInt64(v); ok && n > 0 {
			record.OnuCount = int(n)
		}
		if sv, ok := oids.Result(statusRows, codec.Sibling(table.PonPortStatus, suffixStr)); ok {
			if code, ok := asInt64(sv); ok && code == 1 {
				record.OperStatus = "up"
			}
		}
		ports = append(ports, record)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })
	return ports
}

// oidInt reads an integer value for an exact OID out of get results.
func oidInt(results map[string]interface{}, oid string) (int64, bool) {
	v, ok := oids.Result(results, oid)
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

// siblingInt reads an integer from a walked table for the row suffix.
func siblingInt(rows map[string]interface{}, base, suffix string) (int64, bool) {
	v, ok := oids.Result(rows, codec.Sibling(base, suffix))
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

// validPercent filters a raw reading into an optional percentage.
func validPercent(raw int64, ok bool) *float64 {
	if !ok || !validity.Raw(raw) {
		return nil
	}
	v := float64(raw)
	if !validity.Percent(v) {
		return nil
	}
	return &v
}

// validTemp filters a raw reading into an optional temperature.
func validTemp(raw int64, ok bool) *float64 {
	if !ok || !validity.Raw(raw) {
		return nil
	}
	v := float64(raw)
	if !validity.TemperatureC(v) {
		return nil
	}
	return &v
}

// maxValid keeps the maximum reading across a board table walk that
// passes the given filter; nil when no board yields a valid reading.
func maxValid(rows map[string]interface{}, valid func(float64) bool) *float64 {
	var best *float64
	for _, v := range rows {
		raw, ok := asInt64(v)
		if !ok || !validity.Raw(raw) {
			continue
		}
		f := float64(raw)
		if !valid(f) {
			continue
		}
		if best == nil || f > *best {
			value := f
			best = &value
		}
	}
	return best
}
