// internal/ponto/validate.go
//
// Field rules and free-text sanitization for disposal points.
//
// Context
// -------
// The same rules run twice: once at the HTTP boundary (components/pontos)
// and again inside Store.Submit.  The Store never assumes an upstream layer
// already validated its input.
//
// Workflow
// --------
//  1. Normalize trims surrounding whitespace.
//  2. Validate checks lengths and coordinate bounds and reports the first
//     failing field.
//  3. Sanitize strips HTML-significant and control characters.
//  4. Submit validates the sanitized values again, since stripping can push
//     a field under its minimum length.
package ponto

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxTextLength caps every sanitized free-text field.
const MaxTextLength = 1000

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so clients can map errors to form inputs.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Normalize returns c with surrounding whitespace trimmed from text fields.
func Normalize(c Candidate) Candidate {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.AcceptedMaterials = strings.TrimSpace(c.AcceptedMaterials)
	return c
}

// Validate checks c against the field rules and returns a *ValidationError
// naming the first failing field, or nil.  Text lengths are measured after
// trimming.
func Validate(c Candidate) error {
	c = Normalize(c)

	if err := v.Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return &ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
		}
		return &ValidationError{Message: err.Error()}
	}

	// The latitude/longitude tags parse a decimal rendering; keep an explicit
	// numeric guard so NaN or Inf can never reach storage.
	if !ValidCoordinates(*c.Latitude, *c.Longitude) {
		return &ValidationError{Field: "latitude", Message: "invalid geographic coordinates"}
	}
	return nil
}

// ValidCoordinates reports whether lat/lng are finite and inside geographic
// bounds.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Sanitize trims s, removes the characters < > " ' & and ASCII control
// characters, and truncates the result to MaxTextLength characters.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n == MaxTextLength {
			break
		}
		switch {
		case r == '<', r == '>', r == '"', r == '\'', r == '&':
			continue
		case r <= 0x1F, r == 0x7F:
			continue
		case r == utf8.RuneError:
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// SanitizeCandidate applies Sanitize to every free-text field of c.
func SanitizeCandidate(c Candidate) Candidate {
	c.Name = Sanitize(c.Name)
	c.Description = Sanitize(c.Description)
	c.AcceptedMaterials = Sanitize(c.AcceptedMaterials)
	return c
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "latitude":
		return "latitude must be between -90 and 90"
	case "longitude":
		return "longitude must be between -180 and 180"
	default:
		return fe.Field() + " is invalid"
	}
}
