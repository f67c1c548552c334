// Package signing implements the canonical-JSON signing protocol used to
// produce verifiable 3PID bind assertions: deterministic serialisation,
// versioned ed25519 keys, and signature attachment under "signatures".
package signing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalJSON returns the deterministic encoding of v: UTF-8, object keys
// in lexicographic order, no insignificant whitespace, no HTML escaping.
// These are the exact bytes that get signed, so any change here breaks
// signature verification against other servers.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: marshal: %w", err)
	}

	// Round-trip through interface{} so objects become maps, which the
	// encoder serialises with sorted keys. UseNumber keeps integers exact.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonical json: decode: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("canonical json: encode: %w", err)
	}

	// Encode appends a newline; it is not part of the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
