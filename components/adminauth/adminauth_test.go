package adminauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanizio/ecoponto/internal/audit"
	"github.com/yanizio/ecoponto/internal/guard"
)

func post(c *Component, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Routes().ServeHTTP(w, req)
	return w
}

func TestVerifyAdmin(t *testing.T) {
	rec := audit.New(nil, 10)
	c := New(guard.New("moderator-secret-1"), rec, nil)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"ok", `{"adminToken":"moderator-secret-1"}`, http.StatusOK},
		{"missing", `{}`, http.StatusBadRequest},
		{"short", `{"adminToken":"abc"}`, http.StatusBadRequest},
		{"not a string", `{"adminToken":12345678}`, http.StatusBadRequest},
		{"mismatch", `{"adminToken":"moderator-secret-2"}`, http.StatusForbidden},
		{"malformed", `{"adminToken":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(c, tc.body)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.JSONEq(t, `{"success":true,"data":{"isAdmin":true}}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
				assert.NotContains(t, w.Body.String(), "moderator-secret")
			}
		})
	}

	// One success, four denials; malformed JSON never reaches the guard.
	assert.Len(t, rec.Recent(0), 5)
}

func TestVerifyAdminNotConfigured(t *testing.T) {
	c := New(guard.New(""), nil, nil)
	w := post(c, `{"adminToken":"long-enough-token"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
