// Package transport provides the minimal SNMP get/walk contract the
// polling engine requires. Every call opens its own ephemeral session
// and releases it on every exit path; no connection is shared or
// cached across calls.
package transport

import "context"

// Conn is the request/response contract consumed by the aggregator.
//
// Get fetches exact-match values; an address the device answers with a
// per-address error is absent from the result, not fatal. Walk returns
// every OID/value pair in the subtree rooted at base. Map keys are OIDs
// without a leading dot; values are decoded per DecodeValue.
type Conn interface {
	Get(ctx context.Context, oids []string) (map[string]interface{}, error)
	Walk(ctx context.Context, base string) (map[string]interface{}, error)
}
