package ipg

import (
	"maps"
	"slices"
	"strings"

	"github.com/aussiebroadwan/washpay/pkg/cryptox"
)

// FieldHashExtended carries the signature. It never takes part in its own
// computation.
const FieldHashExtended = "hashExtended"

// HashAlgorithm is the value of the hash_algorithm field for Sign.
const HashAlgorithm = "HMACSHA256"

// Params is one gateway transaction request. Values are scalars (strings,
// numbers, booleans); insertion order is irrelevant.
type Params map[string]any

// Canonical returns the string the gateway signs: the values of every field
// except hashExtended, ordered by key (bytewise), stringified and joined with
// "|". Fields whose value is nil or stringifies to "" are left out. Key names
// are not part of the output.
func Canonical(p Params) string {
	keys := slices.Sorted(maps.Keys(p))

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == FieldHashExtended {
			continue
		}
		v, ok := stringify(p[k])
		if !ok || v == "" {
			continue
		}
		values = append(values, v)
	}
	return strings.Join(values, "|")
}

// Sign returns the Base64 HMAC-SHA256 of Canonical(p) keyed with secret.
func Sign(p Params, secret string) string {
	return cryptox.HMACSHA256Base64(secret, Canonical(p))
}

// Verify reports whether signature matches p under secret.
func Verify(p Params, secret, signature string) bool {
	return cryptox.EqualMAC(Sign(p, secret), signature)
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// Signed returns a copy of p with hashExtended set to its signature.
func (p Params) Signed(secret string) Params {
	out := p.Clone()
	if out == nil {
		out = Params{}
	}
	out[FieldHashExtended] = Sign(p, secret)
	return out
}

// Strings returns every field stringified, nil values as "". This is what a
// browser submits for the form.
func (p Params) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		s, _ := stringify(v)
		out[k] = s
	}
	return out
}
