// Package validity holds the range and sentinel rules applied to raw
// readings before they reach callers. OLT firmware reports garbage for
// absent optics and unequipped slots; a reading that fails a rule is
// dropped, never zero-filled.
package validity

// InvalidValue is the 0x7FFFFFFF marker Huawei-style firmware returns
// in optical tables when the ONU is offline or the value cannot be
// read.
const InvalidValue int64 = 2147483647

// NotApplicable is the one-byte sentinel some board tables report for
// metrics a card does not have.
const NotApplicable int64 = 255

// OpticalDbm accepts power readings strictly inside (-50, 10) dBm.
func OpticalDbm(v float64) bool {
	return v > -50 && v < 10
}

// DistanceMeters accepts fiber distances strictly inside (0, 100000).
func DistanceMeters(v int) bool {
	return v > 0 && v < 100000
}

// Percent accepts utilization values in [0, 100].
func Percent(v float64) bool {
	return v >= 0 && v <= 100
}

// TemperatureC accepts temperatures strictly inside (10, 100) °C.
// Values at or below 10 and at or above 100 (including the 255
// sentinel) mean "not applicable" on the vendors this engine supports.
func TemperatureC(v float64) bool {
	return v > 10 && v < 100
}

// VlanID accepts VLAN IDs in [1, 4094].
func VlanID(v int) bool {
	return v >= 1 && v <= 4094
}

// Raw rejects the wire-level sentinels before any scaling is applied.
func Raw(v int64) bool {
	return v != InvalidValue && v != NotApplicable
}
