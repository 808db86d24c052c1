// Package commitment provides deterministic JSON canonicalization and the
// content-addressed commitment hash derived from it, for the manifest
// format (§3, §4.8).
package commitment

import (
	"crypto/sha256"
	"encoding/json"
	"sort"
)

// CanonicalizeJSON takes arbitrary JSON bytes and returns a canonical
// encoding: object keys sorted, array order preserved. This is a
// simplified RFC 8785-like approach, not a full implementation.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	canonical := canonicalizeValue(v)
	return json.Marshal(canonical)
}

// canonicalizeValue recursively sorts map keys; arrays retain order.
func canonicalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(vv))
		for _, k := range keys {
			ordered[k] = canonicalizeValue(vv[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return vv
	}
}

// MarshalCanonical marshals v to JSON and then canonicalizes it.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return CanonicalizeJSON(raw)
}

// Hash returns the SHA-256 commitment of a manifest's canonical JSON
// encoding. Two manifests that are byte-identical once canonicalized
// produce the same commitment regardless of field order in the original
// encoding; this is what lets a verifier or archive key manifests by
// content rather than by their random proof_id.
func Hash(canonicalJSON []byte) [32]byte {
	return sha256.Sum256(canonicalJSON)
}
