package transport

import (
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// DecodeValue interprets one varbind into a typed Go value. Byte
// payloads go through DecodeBytes; numeric payloads pass through as
// int64/uint64. Returns false for per-address protocol answers
// (NoSuchObject, NoSuchInstance, EndOfMibView, Null) so the caller can
// drop the address from the result.
func DecodeValue(pdu gosnmp.SnmpPDU) (interface{}, bool) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return nil, false
	case gosnmp.OctetString:
		raw, ok := pdu.Value.([]byte)
		if !ok {
			return nil, false
		}
		return DecodeBytes(raw), true
	case gosnmp.Integer:
		return gosnmp.ToBigInt(pdu.Value).Int64(), true
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks:
		return gosnmp.ToBigInt(pdu.Value).Uint64(), true
	case gosnmp.Counter64:
		return gosnmp.ToBigInt(pdu.Value).Uint64(), true
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		s, _ := pdu.Value.(string)
		return s, true
	default:
		return pdu.Value, true
	}
}

// DecodeBytes renders a byte payload losslessly. If every byte is
// printable ASCII or whitespace the trimmed text is returned; otherwise
// the uppercase hex rendering. Vendor tables mix human-readable labels
// with binary serials in the same column family, so the hex fallback
// guarantees no byte is silently lost.
func DecodeBytes(raw []byte) string {
	if isPrintable(raw) {
		return strings.TrimSpace(string(raw))
	}
	return fmt.Sprintf("%X", raw)
}

func isPrintable(raw []byte) bool {
	for _, b := range raw {
		if b >= 0x20 && b <= 0x7e {
			continue
		}
		switch b {
		case '\t', '\n', '\r':
			continue
		}
		return false
	}
	return true
}
