// internal/guard/guard.go
//
// Admin capability guard.
//
// Context
// -------
// One shared secret, configured at deployment, grants every privileged
// operation.  Callers re-present the full token on each privileged request
// and each presentation is verified on its own.  There is no session, no
// expiry, and no rotation.
//
// Outcomes
// --------
//
//	nil                          – authorized
//	DeniedError{MissingOrTooShort} – absent, not a string, or < 8 characters
//	DeniedError{NotConfigured}     – deployment has no secret (server fault)
//	DeniedError{Mismatch}          – token differs from the secret
//
// The match test compares SHA-256 digests with crypto/subtle and folds in a
// constant-time length check.  Timing therefore depends neither on the first
// differing character nor on whether the lengths differ.
//
// Notes
// -----
//   - The guard never logs and never returns the presented token.
//   - Oxford commas, two spaces after periods.
package guard

import (
	"crypto/sha256"
	"crypto/subtle"
	"unicode/utf8"
)

// MinTokenLength is the shortest token the guard will compare.
const MinTokenLength = 8

// Reason classifies a denied verification.
type Reason int

const (
	ReasonMissingOrTooShort Reason = iota + 1
	ReasonNotConfigured
	ReasonMismatch
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingOrTooShort:
		return "missing_or_too_short"
	case ReasonNotConfigured:
		return "not_configured"
	case ReasonMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// DeniedError is returned by Verify when the token does not authorize.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string { return "admin access denied: " + e.Reason.String() }

// Guard is stateless apart from the configured secret digest and is safe for
// concurrent use.
type Guard struct {
	configured bool
	digest     [sha256.Size]byte
	length     int
}

// New returns a Guard for secret.  An empty secret yields a Guard whose every
// well-formed verification fails with ReasonNotConfigured.
func New(secret string) *Guard {
	if secret == "" {
		return &Guard{}
	}
	return &Guard{
		configured: true,
		digest:     sha256.Sum256([]byte(secret)),
		length:     len(secret),
	}
}

// Configured reports whether a secret is present.
func (g *Guard) Configured() bool { return g.configured }

// Verify checks a presented token.  It returns nil when the token grants
// admin capability, else a *DeniedError.
func (g *Guard) Verify(token string) error {
	if token == "" || utf8.RuneCountInString(token) < MinTokenLength {
		return &DeniedError{Reason: ReasonMissingOrTooShort}
	}
	if !g.configured {
		return &DeniedError{Reason: ReasonNotConfigured}
	}
	if !g.matches(token) {
		return &DeniedError{Reason: ReasonMismatch}
	}
	return nil
}

// VerifyAny is Verify for decoded JSON values; anything other than a string
// counts as a missing token.
func (g *Guard) VerifyAny(v any) error {
	s, ok := v.(string)
	if !ok {
		return &DeniedError{Reason: ReasonMissingOrTooShort}
	}
	return g.Verify(s)
}

func (g *Guard) matches(token string) bool {
	sum := sha256.Sum256([]byte(token))
	digestEq := subtle.ConstantTimeCompare(sum[:], g.digest[:])
	lengthEq := subtle.ConstantTimeEq(int32(len(token)), int32(g.length))
	return digestEq&lengthEq == 1
}
