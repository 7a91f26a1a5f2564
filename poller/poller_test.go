package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberwatch/oltpoll/oids"
	"github.com/fiberwatch/oltpoll/transport"
	"github.com/fiberwatch/oltpoll/types"
)

// fakeConn serves canned get/walk results, with per-base walk errors to
// exercise the degraded paths.
type fakeConn struct {
	gets     map[string]interface{}
	getErr   error
	walks    map[string]map[string]interface{}
	walkErrs map[string]error
}

func (f *fakeConn) Get(_ context.Context, oidList []string) (map[string]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make(map[string]interface{})
	for _, oid := range oidList {
		if v, ok := f.gets[oid]; ok {
			out[oid] = v
		}
	}
	return out, nil
}

func (f *fakeConn) Walk(_ context.Context, base string) (map[string]interface{}, error) {
	if err := f.walkErrs[base]; err != nil {
		return nil, err
	}
	if rows, ok := f.walks[base]; ok {
		return rows, nil
	}
	return map[string]interface{}{}, nil
}

func newEngine(conn transport.Conn) *Engine {
	return New(WithDial(func(types.DeviceEndpoint) transport.Conn { return conn }))
}

func huaweiTable(t *testing.T) oids.Table {
	t.Helper()
	table, err := oids.Lookup(types.VendorHuawei)
	require.NoError(t, err)
	return table
}

func zteTable(t *testing.T) oids.Table {
	t.Helper()
	table, err := oids.Lookup(types.VendorZTE)
	require.NoError(t, err)
	return table
}

var endpoint = types.DeviceEndpoint{Host: "10.0.0.1", Community: "public"}

func TestDiscoverOnusHuawei(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.OnuSerialNumber: {
				table.OnuSerialNumber + ".4194304256.5": "SN123",
			},
			table.OnuStatus: {
				table.OnuStatus + ".4194304256.5": int64(1),
			},
		},
	}

	onus, warnings := newEngine(conn).DiscoverOnus(context.Background(), endpoint, types.VendorHuawei)
	require.Len(t, onus, 1)
	assert.Empty(t, warnings)

	onu := onus[0]
	assert.Equal(t, "SN123", onu.SerialNumber)
	assert.Equal(t, 1, onu.PonPort) // ifIndex offset 256 -> slot 0, port 1
	assert.Equal(t, 5, onu.OnuID)
	assert.Equal(t, types.OnuOnline, onu.Status)
	assert.Equal(t, "no description", onu.Description)
	assert.Equal(t, "4194304256.5", onu.RawIndexSuffix)
}

func TestDiscoverOnusDescriptionTrimmed(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.OnuSerialNumber: {
				table.OnuSerialNumber + ".4194304256.5": "SN123",
				table.OnuSerialNumber + ".4194304256.6": "SN124",
			},
			table.OnuDescription: {
				table.OnuDescription + ".4194304256.5": "  customer-17  ",
				table.OnuDescription + ".4194304256.6": "   ",
			},
		},
	}

	onus, _ := newEngine(conn).DiscoverOnus(context.Background(), endpoint, types.VendorHuawei)
	require.Len(t, onus, 2)

	byID := map[int]types.DiscoveredOnu{}
	for _, onu := range onus {
		byID[onu.OnuID] = onu
	}
	assert.Equal(t, "customer-17", byID[5].Description)
	assert.Equal(t, "no description", byID[6].Description)
	// status table absent entirely: every ONU reads offline
	assert.Equal(t, types.OnuOffline, byID[5].Status)
}

func TestDiscoverOnusSerialWalkFailure(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		walkErrs: map[string]error{
			table.OnuSerialNumber: errors.New("timeout"),
		},
		walks: map[string]map[string]interface{}{
			table.OnuStatus: {
				table.OnuStatus + ".4194304256.5": int64(1),
			},
		},
	}

	onus, warnings := newEngine(conn).DiscoverOnus(context.Background(), endpoint, types.VendorHuawei)
	assert.Empty(t, onus)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "serial walk failed")
}

func TestDiscoverOnusZTE(t *testing.T) {
	table := zteTable(t)
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.OnuSerialNumber: {
				table.OnuSerialNumber + ".4.12": "ZTEG12345678",
			},
			table.OnuStatus: {
				table.OnuStatus + ".4.12": int64(2),
			},
		},
	}

	onus, _ := newEngine(conn).DiscoverOnus(context.Background(), endpoint, types.VendorZTE)
	require.Len(t, onus, 1)
	assert.Equal(t, 4, onus[0].PonPort)
	assert.Equal(t, 12, onus[0].OnuID)
	assert.Equal(t, types.OnuLOS, onus[0].Status)
}

func TestOnuStatusFromCode(t *testing.T) {
	tests := []struct {
		vendor types.Vendor
		code   int64
		want   types.OnuStatus
	}{
		{types.VendorHuawei, 1, types.OnuOnline},
		{types.VendorHuawei, 2, types.OnuOffline},
		{types.VendorHuawei, 3, types.OnuLOS},
		{types.VendorHuawei, 99, types.OnuOffline},
		{types.VendorZTE, 1, types.OnuOnline},
		{types.VendorZTE, 2, types.OnuLOS},
		{types.VendorZTE, 3, types.OnuOffline},
		{types.VendorZTE, 0, types.OnuOffline},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, onuStatusFromCode(tt.vendor, tt.code),
			"vendor %s code %d", tt.vendor, tt.code)
	}
}

func TestBulkPollOpticalPower(t *testing.T) {
	table := huaweiTable(t)
	row := func(base, suffix string) string { return base + "." + suffix }
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.OnuStatus: {
				row(table.OnuStatus, "4194304256.5"): int64(1),
				row(table.OnuStatus, "4194304256.6"): int64(2),
			},
			table.OnuRxPower: {
				row(table.OnuRxPower, "4194304256.5"): int64(-2600), // -26.00 dBm, valid
				row(table.OnuRxPower, "4194304256.6"): int64(2000),  // +20.00 dBm, rejected
			},
			table.OnuTxPower: {
				row(table.OnuTxPower, "4194304256.5"): int64(250),
			},
			table.OnuDistance: {
				row(table.OnuDistance, "4194304256.5"): int64(2345),
				row(table.OnuDistance, "4194304256.6"): int64(2147483647), // offline marker
			},
		},
	}

	samples, warnings := newEngine(conn).BulkPollOpticalPower(context.Background(), endpoint, types.VendorHuawei)
	assert.Empty(t, warnings)
	require.Len(t, samples, 2)

	first := samples["1.5"]
	require.NotNil(t, first)
	require.NotNil(t, first.RxPowerDbm)
	assert.InDelta(t, -26.0, *first.RxPowerDbm, 0.001)
	require.NotNil(t, first.TxPowerDbm)
	assert.InDelta(t, 2.5, *first.TxPowerDbm, 0.001)
	require.NotNil(t, first.DistanceMeters)
	assert.Equal(t, 2345, *first.DistanceMeters)
	require.NotNil(t, first.Status)
	assert.Equal(t, types.OnuOnline, *first.Status)

	second := samples["1.6"]
	require.NotNil(t, second)
	assert.Nil(t, second.RxPowerDbm, "out-of-domain power must be absent, not zero-filled")
	assert.Nil(t, second.TxPowerDbm)
	assert.Nil(t, second.DistanceMeters)
	require.NotNil(t, second.Status)
	assert.Equal(t, types.OnuOffline, *second.Status)
}

func TestBulkPollOpticalPowerRxWalkFailure(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.OnuStatus: {
				table.OnuStatus + ".4194304256.5": int64(1),
				table.OnuStatus + ".4194304256.6": int64(3),
			},
		},
		walkErrs: map[string]error{
			table.OnuRxPower: errors.New("timeout"),
		},
	}

	samples, warnings := newEngine(conn).BulkPollOpticalPower(context.Background(), endpoint, types.VendorHuawei)
	require.NotEmpty(t, warnings)
	require.Len(t, samples, 2)

	for _, sample := range samples {
		assert.Nil(t, sample.RxPowerDbm)
		require.NotNil(t, sample.Status)
	}
	assert.Equal(t, types.OnuOnline, *samples["1.5"].Status)
	assert.Equal(t, types.OnuLOS, *samples["1.6"].Status)
}

func TestGetSystemInfoHuawei(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		gets: map[string]interface{}{
			oids.OIDSysName:   "olt-lab-1",
			oids.OIDSysDescr:  "Huawei Integrated Access Software. Version 8.150 MA5800-X7",
			oids.OIDSysUpTime: uint64(8640000),
		},
		walks: map[string]map[string]interface{}{
			table.BoardCPU: {
				table.BoardCPU + ".0.2": int64(10),
				table.BoardCPU + ".0.3": int64(70),
				table.BoardCPU + ".0.4": int64(255), // unequipped slot
			},
			table.BoardTemp: {
				table.BoardTemp + ".0.2": int64(5), // below valid floor
				table.BoardTemp + ".0.3": int64(47),
			},
		},
	}

	info, err := newEngine(conn).GetSystemInfo(context.Background(), endpoint, types.VendorHuawei)
	require.NoError(t, err)
	assert.Equal(t, "olt-lab-1", info.SysName)
	assert.Equal(t, int64(86400), info.SysUptimeSeconds)
	assert.Equal(t, "8.150", info.FirmwareVersion)

	require.NotNil(t, info.CpuPct)
	assert.Equal(t, 70.0, *info.CpuPct, "max valid board reading wins")
	require.NotNil(t, info.TempC)
	assert.Equal(t, 47.0, *info.TempC)
	assert.Nil(t, info.MemPct, "no board yielded a valid reading")
}

func TestGetSystemInfoZTEScalars(t *testing.T) {
	table := zteTable(t)
	conn := &fakeConn{
		gets: map[string]interface{}{
			oids.OIDSysName:   "zxa10-c620",
			oids.OIDSysDescr:  "ZXA10 C620 Version 2.1.0 Software",
			oids.OIDSysUpTime: uint64(360000),
			table.SysCPU:      int64(55),
			table.SysMem:      int64(101), // out of range, dropped
			table.SysTemp:     int64(40),
		},
	}

	info, err := newEngine(conn).GetSystemInfo(context.Background(), endpoint, types.VendorZTE)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), info.SysUptimeSeconds)
	assert.Equal(t, "2.1.0", info.FirmwareVersion)
	require.NotNil(t, info.CpuPct)
	assert.Equal(t, 55.0, *info.CpuPct)
	assert.Nil(t, info.MemPct)
	require.NotNil(t, info.TempC)
	assert.Equal(t, 40.0, *info.TempC)
}

func TestGetSystemInfoTransportFailure(t *testing.T) {
	conn := &fakeConn{
		getErr: &types.TransportError{Host: "10.0.0.1", Op: "get", Err: errors.New("no route")},
	}

	_, err := newEngine(conn).GetSystemInfo(context.Background(), endpoint, types.VendorHuawei)
	require.Error(t, err)

	var terr *types.TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestTestConnection(t *testing.T) {
	up := &fakeConn{gets: map[string]interface{}{oids.OIDSysDescr: "MA5800"}}
	assert.True(t, newEngine(up).TestConnection(context.Background(), endpoint))

	down := &fakeConn{getErr: errors.New("timeout")}
	assert.False(t, newEngine(down).TestConnection(context.Background(), endpoint))

	empty := &fakeConn{}
	assert.False(t, newEngine(empty).TestConnection(context.Background(), endpoint))
}

func TestGetOnuCount(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		walks: map[string]map[string]interface{}{
			table.PonOnuCount: {
				table.PonOnuCount + ".1": int64(3),
				table.PonOnuCount + ".2": int64(5),
				table.PonOnuCount + ".3": int64(0),
			},
		},
	}
	assert.Equal(t, 8, newEngine(conn).GetOnuCount(context.Background(), endpoint, types.VendorHuawei))

	failing := &fakeConn{walkErrs: map[string]error{table.PonOnuCount: errors.New("timeout")}}
	assert.Equal(t, 0, newEngine(failing).GetOnuCount(context.Background(), endpoint, types.VendorHuawei))
}

func TestGetDetailedInfo(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		gets: map[string]interface{}{
			oids.OIDSysName:   "olt-lab-1",
			oids.OIDSysDescr:  "Huawei Integrated Access Software. Version 8.150",
			oids.OIDSysUpTime: uint64(100),
		},
		walks: map[string]map[string]interface{}{
			table.BoardType: {
				table.BoardType + ".0.2": "H901GPHF",
				table.BoardType + ".0.9": "H901MPLA",
			},
			table.BoardStatus: {
				table.BoardStatus + ".0.2": int64(1),
				table.BoardStatus + ".0.9": int64(2),
			},
			table.BoardCPU: {
				table.BoardCPU + ".0.2": int64(40),
			},
			table.IfDescr: {
				table.IfDescr + ".101": "GigabitEthernet0/19/0",
				table.IfDescr + ".102": "GPON 0/1/0",
			},
			table.IfOperStatus: {
				table.IfOperStatus + ".101": int64(1),
			},
			table.IfSpeed: {
				table.IfSpeed + ".101": uint64(1000),
			},
			table.IfAlias: {
				table.IfAlias + ".101": "uplink-core ",
			},
			table.VlanName: {
				table.VlanName + ".200": "iptv",
				table.VlanName + ".100": "mgmt",
				table.VlanName + ".5000": "bogus",
			},
			table.PonOnuCount: {
				table.PonOnuCount + ".2": int64(0),
				table.PonOnuCount + ".1": int64(32),
			},
			table.PonPortStatus: {
				table.PonPortStatus + ".1": int64(1),
				table.PonPortStatus + ".2": int64(2),
			},
		},
	}

	info, err := newEngine(conn).GetDetailedInfo(context.Background(), endpoint, types.VendorHuawei)
	require.NoError(t, err)

	require.Len(t, info.Boards, 2)
	assert.Equal(t, "H901GPHF", info.Boards[0].BoardType)
	assert.Equal(t, types.BoardNormal, info.Boards[0].OperStatus)
	require.NotNil(t, info.Boards[0].CpuPct)
	assert.Equal(t, 40.0, *info.Boards[0].CpuPct)
	assert.Equal(t, types.BoardFault, info.Boards[1].OperStatus)
	assert.Nil(t, info.Boards[1].CpuPct)

	require.Len(t, info.Uplinks, 1, "PON ports are not uplinks")
	uplink := info.Uplinks[0]
	assert.Equal(t, "GigabitEthernet0/19/0", uplink.PortLabel)
	assert.Equal(t, "up", uplink.OperStatus)
	assert.Equal(t, "uplink-core", uplink.Alias)
	require.NotNil(t, uplink.SpeedMbps)
	assert.Equal(t, 1000, *uplink.SpeedMbps)

	require.Len(t, info.Vlans, 2, "VLAN 5000 is out of range")
	assert.Equal(t, 100, info.Vlans[0].VlanID)
	assert.Equal(t, 200, info.Vlans[1].VlanID)

	require.Len(t, info.PonPorts, 2)
	assert.Equal(t, 1, info.PonPorts[0].Port)
	assert.Equal(t, 32, info.PonPorts[0].OnuCount)
	assert.Equal(t, "up", info.PonPorts[0].OperStatus)
	assert.Equal(t, "down", info.PonPorts[1].OperStatus)

	assert.Empty(t, info.Warnings)
}

func TestGetDetailedInfoDegradesPerTable(t *testing.T) {
	table := huaweiTable(t)
	conn := &fakeConn{
		gets: map[string]interface{}{
			oids.OIDSysName:  "olt-lab-1",
			oids.OIDSysDescr: "MA5800",
		},
		walks: map[string]map[string]interface{}{
			table.VlanName: {
				table.VlanName + ".100": "mgmt",
			},
		},
		walkErrs: map[string]error{
			table.IfDescr:   errors.New("timeout"),
			table.BoardType: errors.New("timeout"),
		},
	}

	info, err := newEngine(conn).GetDetailedInfo(context.Background(), endpoint, types.VendorHuawei)
	require.NoError(t, err, "sub-walk failures never abort the call")

	assert.Empty(t, info.Boards)
	assert.Empty(t, info.Uplinks)
	require.Len(t, info.Vlans, 1)
	assert.NotEmpty(t, info.Warnings)
}

func TestNormalizeSerial(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already ascii", "HWTC0011D168", "HWTC0011D168"},
		{"hex-encoded vendor prefix", "485754430011D168", "HWTC0011D168"},
		{"zte hex prefix", "5A544547C0A80001", "ZTEGC0A80001"},
		{"short value untouched", "SN123", "SN123"},
		{"non-ascii prefix stays hex", "0102030400112233", "0102030400112233"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSerial(tt.input); got != tt.want {
				t.Errorf("NormalizeSerial(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
