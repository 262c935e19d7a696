// internal/ponto/validate_test.go
//
// Run: go test ./internal/ponto -v

package ponto

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func validCandidate() Candidate {
	return Candidate{
		Name:              "Ecoponto Centro",
		Description:       "Local para descarte de recicláveis",
		AcceptedMaterials: "Papel, Plástico",
		Latitude:          f64(-23.55),
		Longitude:         f64(-46.63),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Candidate)
		field string
	}{
		{"valid", func(*Candidate) {}, ""},
		{"name too short after trim", func(c *Candidate) { c.Name = "  ab  " }, "nome_do_ponto"},
		{"name at minimum", func(c *Candidate) { c.Name = "abc" }, ""},
		{"name too long", func(c *Candidate) { c.Name = strings.Repeat("a", 201) }, "nome_do_ponto"},
		{"name counts runes", func(c *Candidate) { c.Name = strings.Repeat("ç", 200) }, ""},
		{"description too short", func(c *Candidate) { c.Description = "curta" }, "descricao"},
		{"description too long", func(c *Candidate) { c.Description = strings.Repeat("d", 1001) }, "descricao"},
		{"materials empty", func(c *Candidate) { c.AcceptedMaterials = "   " }, "materiais_aceitos"},
		{"materials too long", func(c *Candidate) { c.AcceptedMaterials = strings.Repeat("m", 501) }, "materiais_aceitos"},
		{"latitude missing", func(c *Candidate) { c.Latitude = nil }, "latitude"},
		{"longitude missing", func(c *Candidate) { c.Longitude = nil }, "longitude"},
		{"latitude above range", func(c *Candidate) { c.Latitude = f64(90.0001) }, "latitude"},
		{"latitude below range", func(c *Candidate) { c.Latitude = f64(-91) }, "latitude"},
		{"longitude above range", func(c *Candidate) { c.Longitude = f64(181) }, "longitude"},
		{"latitude NaN", func(c *Candidate) { c.Latitude = f64(math.NaN()) }, "latitude"},
		{"longitude Inf", func(c *Candidate) { c.Longitude = f64(math.Inf(1)) }, "longitude"},
		{"zero coordinates allowed", func(c *Candidate) { c.Latitude, c.Longitude = f64(0), f64(0) }, ""},
		{"bounds inclusive", func(c *Candidate) { c.Latitude, c.Longitude = f64(-90), f64(180) }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validCandidate()
			tc.edit(&c)

			err := Validate(c)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.NotEmpty(t, ve.Message)
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(-23.55, -46.63))
	assert.True(t, ValidCoordinates(90, -180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.1))
	assert.False(t, ValidCoordinates(math.NaN(), 0))
	assert.False(t, ValidCoordinates(0, math.Inf(-1)))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<script>alert(1)</script>Ecoponto", "scriptalert(1)/scriptEcoponto"},
		{`  "Tom" & 'Jerry'  `, "Tom  Jerry"},
		{"linha\x00um\x1fdois\x7f", "linhaumdois"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"Reciclagem São João", "Reciclagem São João"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Sanitize(tc.in), "Sanitize(%q)", tc.in)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	in := strings.Repeat("é", MaxTextLength+50)
	out := Sanitize(in)
	assert.Equal(t, MaxTextLength, len([]rune(out)))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, s := range []string{"<b>x</b>", "a & b", " padded ", "ok"} {
		once := Sanitize(s)
		assert.Equal(t, once, Sanitize(once))
	}
}
