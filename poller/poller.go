// Package poller implements the vendor-normalizing aggregation engine.
// Each public operation is one self-contained request/response cycle:
// it dials its own transport sessions, merges whatever tables it could
// fetch, and returns best-effort data with the failures it absorbed
// recorded as warnings.
package poller

import (
	"context"

	"go.uber.org/zap"

	"github.com/fiberwatch/oltpoll/metrics"
	"github.com/fiberwatch/oltpoll/oids"
	"github.com/fiberwatch/oltpoll/transport"
	"github.com/fiberwatch/oltpoll/types"
)

// DialFunc produces a transport connection for one endpoint. Tests
// substitute a fake; the default dials SNMP.
type DialFunc func(ep types.DeviceEndpoint) transport.Conn

// Engine runs the six public polling operations. It holds no per-device
// state: the endpoint and vendor are threaded through every call, and
// every entity it returns is built fresh within that call.
type Engine struct {
	dial   DialFunc
	log    *zap.Logger
	tables map[types.Vendor]oids.Table
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithDial replaces the transport dialer.
func WithDial(dial DialFunc) Option {
	return func(e *Engine) { e.dial = dial }
}

// WithTables installs per-vendor OID table overrides, typically from
// oids.LoadOverrides. Vendors not present fall back to the stock
// registry.
func WithTables(tables map[types.Vendor]oids.Table) Option {
	return func(e *Engine) { e.tables = tables }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dial == nil {
		log := e.log
		e.dial = func(ep types.DeviceEndpoint) transport.Conn {
			return transport.NewSNMPConn(ep, log)
		}
	}
	return e
}

func (e *Engine) table(vendor types.Vendor) (oids.Table, error) {
	if t, ok := e.tables[vendor]; ok {
		return t, nil
	}
	return oids.Lookup(vendor)
}

// walkTolerant walks one table and absorbs failure: a failed walk
// yields an empty map, a warning and a log line, never an error. An
// empty base (the vendor table does not define the column) yields an
// empty map silently.
func (e *Engine) walkTolerant(ctx context.Context, conn transport.Conn, op string, vendor types.Vendor, base string, warnings *types.Warnings) map[string]interface{} {
	if base == "" {
		return map[string]interface{}{}
	}
	results, err := conn.Walk(ctx, base)
	if err != nil {
		e.log.Warn("table walk failed",
			zap.String("op", op),
			zap.String("vendor", string(vendor)),
			zap.String("base", base),
			zap.Error(err))
		warnings.Add("%s: walk %s failed: %v", op, base, err)
		metrics.ObserveSubWalkFailure(op, string(vendor))
		return map[string]interface{}{}
	}
	return results
}

// onuStatusFromCode maps a vendor's raw status code to the canonical
// enum. Unknown codes read as offline.
func onuStatusFromCode(vendor types.Vendor, code int64) types.OnuStatus {
	switch vendor {
	case types.VendorHuawei:
		switch code {
		case 1:
			return types.OnuOnline
		case 3:
			return types.OnuLOS
		default:
			return types.OnuOffline
		}
	default:
		switch code {
		case 1:
			return types.OnuOnline
		case 2:
			return types.OnuLOS
		default:
			return types.OnuOffline
		}
	}
}

// asInt64 extracts an integer from the decoded value types the
// transport produces.
func asInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
