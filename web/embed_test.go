package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		path     string
		contains string
	}{
		{path: "/", contains: "<title>Expense Tracker</title>"},
		{path: "/app.js", contains: "const Session"},
		{path: "/dashboard", contains: "<title>Expense Tracker</title>"},
	}
	h := Handler()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
