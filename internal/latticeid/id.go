// Package latticeid generates and parses client-scoped Lattice IDs.
//
// An ID has the form <client-id><counter>, where client-id is 3-6
// characters drawn from the alphabet below and counter is a monotonic
// per-client integer rendered in the same alphabet. Total length is
// bounded to 3-10 characters. The encoding mirrors the big.Int-based
// base-N encoder pattern used elsewhere in the codebase for short IDs,
// adapted to a Crockford-like alphabet instead of base36.
package latticeid

import (
	"fmt"
	"math/big"
	"strings"
)

// Alphabet excludes 0, 1, 8, 9, the letters I, L, O and U, and all
// lowercase letters to avoid visual ambiguity with O/0, I/l/1, B/8, and g/9
// when IDs are read aloud or typed.
const Alphabet = "ABCDEFGHJKMNPQRSTVWXYZ234567"

const (
	MinClientIDLen = 3
	MaxClientIDLen = 6
	MinTotalLen    = 3
	MaxTotalLen    = 10
)

var charValue = func() map[rune]int64 {
	m := make(map[rune]int64, len(Alphabet))
	for i, c := range Alphabet {
		m[c] = int64(i)
	}
	return m
}()

// ValidateClientID checks that id is 3-6 characters, all drawn from Alphabet.
func ValidateClientID(id string) error {
	if len(id) < MinClientIDLen || len(id) > MaxClientIDLen {
		return fmt.Errorf("client id %q must be %d-%d characters", id, MinClientIDLen, MaxClientIDLen)
	}
	for _, c := range id {
		if _, ok := charValue[c]; !ok {
			return fmt.Errorf("client id %q contains invalid character %q", id, c)
		}
	}
	return nil
}

// EncodeCounter renders n in Alphabet with no leading-zero padding, except
// that n == 0 encodes as a single leading-alphabet-character digit.
func EncodeCounter(n uint64) string {
	if n == 0 {
		return string(Alphabet[0])
	}
	base := big.NewInt(int64(len(Alphabet)))
	val := new(big.Int).SetUint64(n)
	zero := big.NewInt(0)
	mod := new(big.Int)

	var chars []byte
	for val.Cmp(zero) > 0 {
		val.DivMod(val, base, mod)
		chars = append(chars, Alphabet[mod.Int64()])
	}
	// reverse
	for i, j := 0, len(chars)-1; i < j; i, j = j, i {
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

// DecodeCounter parses a counter string back to its integer value.
func DecodeCounter(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty counter")
	}
	base := big.NewInt(int64(len(Alphabet)))
	val := big.NewInt(0)
	for _, c := range s {
		digit, ok := charValue[c]
		if !ok {
			return 0, fmt.Errorf("counter %q contains invalid character %q", s, c)
		}
		val.Mul(val, base)
		val.Add(val, big.NewInt(digit))
	}
	if !val.IsUint64() {
		return 0, fmt.Errorf("counter %q overflows uint64", s)
	}
	return val.Uint64(), nil
}

// Format builds a Lattice ID from a client id and counter value, enforcing
// the total-length bound (3-10).
func Format(clientID string, counter uint64) (string, error) {
	if err := ValidateClientID(clientID); err != nil {
		return "", err
	}
	id := clientID + EncodeCounter(counter)
	if len(id) < MinTotalLen || len(id) > MaxTotalLen {
		return "", fmt.Errorf("id %q length %d outside [%d,%d]", id, len(id), MinTotalLen, MaxTotalLen)
	}
	return id, nil
}

// Parsed is the decomposition of a Lattice ID.
type Parsed struct {
	ClientID string
	Counter  uint64
	Raw      string
}

// Parse splits a Lattice ID into client id and counter by trying every
// valid client-id prefix length (3-6) and accepting the first split whose
// client-id and counter portions are both well-formed. Real client ids are
// assumed not to collide under this scheme, per the spec's collision-lint
// design rather than a length-prefix-free encoding.
func Parse(id string) (Parsed, error) {
	if len(id) < MinTotalLen || len(id) > MaxTotalLen {
		return Parsed{}, fmt.Errorf("id %q length %d outside [%d,%d]", id, len(id), MinTotalLen, MaxTotalLen)
	}
	for _, c := range id {
		if _, ok := charValue[c]; !ok {
			return Parsed{}, fmt.Errorf("id %q contains invalid character %q", id, c)
		}
	}
	for clientLen := MinClientIDLen; clientLen <= MaxClientIDLen; clientLen++ {
		if clientLen >= len(id) {
			break
		}
		clientID := id[:clientLen]
		counterStr := id[clientLen:]
		if counterStr == "" {
			continue
		}
		counter, err := DecodeCounter(counterStr)
		if err != nil {
			continue
		}
		return Parsed{ClientID: clientID, Counter: counter, Raw: id}, nil
	}
	return Parsed{}, fmt.Errorf("id %q could not be parsed into client id + counter", id)
}

// Valid reports whether id parses successfully under the Lattice ID format.
func Valid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// NormalizeClientID upper-cases a client id candidate, since the alphabet
// is uppercase-only; this lets users type lowercase on the command line.
func NormalizeClientID(s string) string {
	return strings.ToUpper(s)
}
