package oids

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fiberwatch/oltpoll/types"
)

// Override replaces individual base OIDs in a vendor table. The Huawei
// ifIndex layout and some enterprise table locations drift between
// firmware families; an override file lets operators patch a single
// column without a code change.
type Override struct {
	Vendor types.Vendor      `yaml:"vendor"`
	OIDs   map[string]string `yaml:"oids"`
}

// LoadOverrides reads a YAML override file and returns the patched
// tables keyed by vendor. Unknown field names are rejected so a typo
// does not silently leave the stock OID in place.
func LoadOverrides(path string) (map[types.Vendor]Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var overrides []Override
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}

	tables := make(map[types.Vendor]Table, len(overrides))
	for _, o := range overrides {
		table, err := Lookup(o.Vendor)
		if err != nil {
			return nil, err
		}
		for field, oid := range o.OIDs {
			if err := table.set(field, oid); err != nil {
				return nil, err
			}
		}
		tables[o.Vendor] = table
	}
	return tables, nil
}

func (t *Table) set(field, oid string) error {
	switch field {
	case "sysCpu":
		t.SysCPU = oid
	case "sysMem":
		t.SysMem = oid
	case "sysTemp":
		t.SysTemp = oid
	case "boardCpu":
		t.BoardCPU = oid
	case "boardMem":
		t.BoardMem = oid
	case "boardTemp":
		t.BoardTemp = oid
	case "boardType":
		t.BoardType = oid
	case "boardStatus":
		t.BoardStatus = oid
	case "ifDescr":
		t.IfDescr = oid
	case "ifOperStatus":
		t.IfOperStatus = oid
	case "ifSpeed":
		t.IfSpeed = oid
	case "ifAlias":
		t.IfAlias = oid
	case "vlanName":
		t.VlanName = oid
	case "ponPortStatus":
		t.PonPortStatus = oid
	case "ponOnuCount":
		t.PonOnuCount = oid
	case "onuSerialNumber":
		t.OnuSerialNumber = oid
	case "onuDescription":
		t.OnuDescription = oid
	case "onuStatus":
		t.OnuStatus = oid
	case "onuRxPower":
		t.OnuRxPower = oid
	case "onuTxPower":
		t.OnuTxPower = oid
	case "onuDistance":
		t.OnuDistance = oid
	default:
		return fmt.Errorf("unknown oid field %q", field)
	}
	return nil
}
