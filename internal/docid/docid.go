// Package docid builds the deterministic document identifiers used by the
// document store.
//
// An identifier is a pure function of (tenant, type, natural id): the three
// parts are joined with Delimiter and base64 encoded with the URL-safe
// alphabet, without padding. Recomputing an identifier from the same inputs
// always yields the same value, which is what makes every sync write an
// idempotent overwrite.
//
// None of the parts may contain Delimiter. This is a precondition of Encode
// and is not checked: an identifier built from a part containing the
// delimiter will not decode back to its inputs.
package docid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the tenant, type and natural id inside an identifier.
const Delimiter = "|"

// ErrMalformedID is returned when an identifier cannot be decoded.
var ErrMalformedID = errors.New("malformed document id")

// Parts are the three components an identifier is derived from.
type Parts struct {
	Tenant    string
	Type      string
	NaturalID string
}

// Encode returns the identifier for the given tenant, document type and
// natural id.
func Encode(tenant, docType, naturalID string) string {
	joined := strings.Join([]string{tenant, docType, naturalID}, Delimiter)
	return base64.RawURLEncoding.EncodeToString([]byte(joined))
}

// Decode recovers the parts an identifier was built from.
func Decode(id string) (Parts, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
	if err != nil {
		return Parts{}, fmt.Errorf("%w: %q: %w", ErrMalformedID, id, err)
	}

	parts := strings.Split(string(raw), Delimiter)
	if len(parts) != 3 {
		return Parts{}, fmt.Errorf("%w: %q has %d parts, want 3", ErrMalformedID, id, len(parts))
	}

	return Parts{Tenant: parts[0], Type: parts[1], NaturalID: parts[2]}, nil
}

// String renders the parts as an identifier.
func (p Parts) String() string {
	return Encode(p.Tenant, p.Type, p.NaturalID)
}
