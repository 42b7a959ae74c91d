package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(format string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{Level: slog.LevelDebug, Format: format, Component: "test", Output: buf}), buf
}

func TestNew_JSONIncludesComponent(t *testing.T) {
	l, buf := newBuffered("json")
	l.Info("hello", "k", "v")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "test", record[FieldComponent])
	assert.Equal(t, "v", record["k"])
}

func TestNew_TextFormat(t *testing.T) {
	l, buf := newBuffered("text")
	l.Warn("careful")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "component=test")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromContext(t *testing.T) {
	l, _ := newBuffered("text")
	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestFields(t *testing.T) {
	f := NewFields().WithOperation(OpCreate).WithUserID("").WithError(errors.New("boom"))
	assert.Equal(t, Fields{FieldOperation: OpCreate, FieldError: "boom"}, f)
	assert.Len(t, f.Args(), 4)
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{name: "ok", status: http.StatusOK, level: "INFO"},
		{name: "client error", status: http.StatusNotFound, level: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, level: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBuffered("json")
			var seen *Logger
			h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/transactions?page=2", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotNil(t, seen)
			requestID := rec.Header().Get(RequestIDHeader)
			assert.True(t, strings.HasPrefix(requestID, "req_"))

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tt.level, record["level"])
			assert.Equal(t, requestID, record[FieldRequestID])
			assert.Equal(t, "/api/transactions", record[FieldPath])
			assert.Equal(t, "page=2", record[FieldQuery])
			assert.EqualValues(t, tt.status, record[FieldStatusCode])
		})
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	l, _ := newBuffered("text")
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestWithComponent_KeepsAttributes(t *testing.T) {
	l, buf := newBuffered("json")
	l.With(FieldRequestID, "req_1").WithComponent(ComponentAuth).Info("login")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, ComponentAuth, record[FieldComponent])
	assert.Equal(t, "req_1", record[FieldRequestID])
	assert.Equal(t, 1, strings.Count(buf.String(), `"component"`))
}
