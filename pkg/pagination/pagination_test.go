package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reviews", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_Explicit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reviews?page=3&per_page=50", nil)
	p := FromRequest(r)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"zero page", "?page=0"},
		{"negative page", "?page=-1"},
		{"non-numeric page", "?page=abc"},
		{"per_page over cap", "?per_page=500"},
		{"zero per_page", "?per_page=0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/reviews"+tc.query, nil)
			p := FromRequest(r)

			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.PerPage)
		})
	}
}
