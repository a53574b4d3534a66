/*
Package canonical produces order-independent fingerprints of nested values.

PURPOSE:
  The engine proves which ruleset, context and ledger produced a figure
  by hashing a canonical serialization of each. Canonicalization must be
  insensitive to map key order at any depth (two submissions differing
  only in key order hash identically) but sensitive to sequence order
  (slices encode meaningful order, e.g. rate-schedule tiers).

HOW:
  The value is round-tripped through encoding/json with UseNumber so
  numbers keep their exact literal, then re-emitted as compact JSON with
  object keys sorted lexicographically at every level. The digest is the
  SHA-256 of the UTF-8 bytes of that canonical string, as lowercase hex.

PROPERTY:
  Digest(Canonicalize(x)) == Digest(Canonicalize(shuffleMapKeys(x)))
  for any value x and any permutation of its map keys at any depth.

SEE ALSO:
  - engine/: assembles the fiscal fingerprint from three sub-fingerprints
*/
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Canonicalize serializes a value deterministically. Map/object keys are
// sorted lexicographically before emission; slice element order is
// preserved.
func Canonicalize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}

	var sb strings.Builder
	emit(&sb, tree)
	return sb.String(), nil
}

// Digest returns the SHA-256 of the UTF-8 bytes of s, as 64 lowercase
// hex characters.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint is the usual composition: Digest(Canonicalize(v)).
func Fingerprint(v any) (string, error) {
	s, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	return Digest(s), nil
}

func emit(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case json.Number:
		sb.WriteString(t.String())
	case string:
		b, _ := json.Marshal(t)
		sb.Write(b)
	case []any:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			emit(sb, e)
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			sb.Write(kb)
			sb.WriteByte(':')
			emit(sb, t[k])
		}
		sb.WriteByte('}')
	default:
		// Unreachable after a JSON round trip.
		b, _ := json.Marshal(t)
		sb.Write(b)
	}
}
