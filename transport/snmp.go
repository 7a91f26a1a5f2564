package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"github.com/fiberwatch/oltpoll/types"
)

// SNMPConn implements Conn over gosnmp for one endpoint. The endpoint
// is captured at construction; each Get/Walk dials a fresh session.
type SNMPConn struct {
	endpoint types.DeviceEndpoint
	log      *zap.Logger
}

// NewSNMPConn returns a Conn for the given endpoint. A nil logger
// disables logging.
func NewSNMPConn(endpoint types.DeviceEndpoint, log *zap.Logger) *SNMPConn {
	if log == nil {
		log = zap.NewNop()
	}
	return &SNMPConn{
		endpoint: endpoint.WithDefaults(),
		log:      log,
	}
}

func (c *SNMPConn) newClient(ctx context.Context) (*gosnmp.GoSNMP, error) {
	version := gosnmp.Version2c
	if c.endpoint.Version == types.SNMPVersion1 {
		version = gosnmp.Version1
	}

	client := &gosnmp.GoSNMP{
		Target:         c.endpoint.Host,
		Port:           uint16(c.endpoint.Port),
		Community:      c.endpoint.Community,
		Version:        version,
		Timeout:        c.endpoint.Timeout,
		Retries:        c.endpoint.Retries,
		MaxRepetitions: 50,
		Context:        ctx,
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect failed: %w", err)
	}
	return client, nil
}

// Get fetches the exact OIDs. Addresses answered with NoSuchObject,
// NoSuchInstance or Null are dropped from the result and logged.
func (c *SNMPConn) Get(ctx context.Context, oids []string) (map[string]interface{}, error) {
	if len(oids) == 0 {
		return map[string]interface{}{}, nil
	}

	client, err := c.newClient(ctx)
	if err != nil {
		return nil, &types.TransportError{Host: c.endpoint.Host, Op: "get", Err: err}
	}
	defer client.Conn.Close()

	packet, err := client.Get(oids)
	if err != nil {
		return nil, &types.TransportError{Host: c.endpoint.Host, Op: "get", Err: err}
	}

	results := make(map[string]interface{}, len(packet.Variables))
	for _, variable := range packet.Variables {
		value, ok := DecodeValue(variable)
		if !ok {
			c.log.Debug("dropping unanswered varbind",
				zap.String("host", c.endpoint.Host),
				zap.String("oid", variable.Name))
			continue
		}
		results[strings.TrimPrefix(variable.Name, ".")] = value
	}
	return results, nil
}

// Walk returns every varbind in the subtree rooted at base, keyed by
// the full OID without a leading dot.
func (c *SNMPConn) Walk(ctx context.Context, base string) (map[string]interface{}, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		return nil, &types.TransportError{Host: c.endpoint.Host, Op: "walk", Err: err}
	}
	defer client.Conn.Close()

	results := make(map[string]interface{})
	walk := client.Walk
	if client.Version != gosnmp.Version1 {
		walk = client.BulkWalk
	}

	err = walk(base, func(pdu gosnmp.SnmpPDU) error {
		value, ok := DecodeValue(pdu)
		if !ok {
			return nil
		}
		results[strings.TrimPrefix(pdu.Name, ".")] = value
		return nil
	})
	if err != nil {
		return nil, &types.TransportError{Host: c.endpoint.Host, Op: "walk", Err: err}
	}
	return results, nil
}

var _ Conn = (*SNMPConn)(nil)
