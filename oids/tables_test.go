package oids

import (
	"testing"

	"github.com/fiberwatch/oltpoll/types"
)

func TestLookup(t *testing.T) {
	for _, vendor := range []types.Vendor{types.VendorHuawei, types.VendorZTE} {
		table, err := Lookup(vendor)
		if err != nil {
			t.Fatalf("Lookup(%s) error: %v", vendor, err)
		}
		if table.Vendor != vendor {
			t.Errorf("Lookup(%s).Vendor = %s", vendor, table.Vendor)
		}
		if table.OnuSerialNumber == "" || table.OnuStatus == "" || table.OnuRxPower == "" {
			t.Errorf("Lookup(%s) table missing ONU columns: %+v", vendor, table)
		}
	}

	if _, err := Lookup(types.Vendor("nokia")); err == nil {
		t.Error("Lookup(nokia) expected error")
	}
}

// Huawei SmartAX exposes health per line card only; the scalar slots
// must stay empty so the poller takes the board-walk branch.
func TestHuaweiHasNoSystemScalars(t *testing.T) {
	table, err := Lookup(types.VendorHuawei)
	if err != nil {
		t.Fatal(err)
	}
	if table.SysCPU != "" || table.SysMem != "" || table.SysTemp != "" {
		t.Errorf("huawei table should have empty system scalars, got %q %q %q",
			table.SysCPU, table.SysMem, table.SysTemp)
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]interface{}
		oid       string
		wantValue interface{}
		wantFound bool
	}{
		{name: "nil results", results: nil, oid: "1.3.6.1", wantFound: false},
		{
			name:      "exact match",
			results:   map[string]interface{}{"1.3.6.1": "value"},
			oid:       "1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{
			name:      "result has dot, oid without",
			results:   map[string]interface{}{".1.3.6.1": "value"},
			oid:       "1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{
			name:      "oid has dot, result without",
			results:   map[string]interface{}{"1.3.6.1": "value"},
			oid:       ".1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{name: "not found", results: map[string]interface{}{"1.3.6.1": "value"}, oid: "1.3.6.2", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotFound := Result(tt.results, tt.oid)
			if gotFound != tt.wantFound {
				t.Fatalf("Result() found = %v, want %v", gotFound, tt.wantFound)
			}
			if gotFound && gotValue != tt.wantValue {
				t.Errorf("Result() = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}
