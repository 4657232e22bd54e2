package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isstrack/internal/domain/tracking"
)

func serveJSON(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWhereTheISSClient(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"name":"iss","id":25544,"latitude":51.5,"longitude":-0.1,"altitude":418.2,"velocity":27600,"timestamp":1700000000}`)
		client := NewWhereTheISSClient(srv.Client(), srv.URL)

		got, err := client.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 51.5, got.Latitude)
		assert.Equal(t, -0.1, got.Longitude)
		require.NotNil(t, got.Altitude)
		assert.Equal(t, 418.2, *got.Altitude)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), got.Timestamp)
	})

	t.Run("wrong field type", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"latitude":"51.5","longitude":-0.1,"altitude":418.2}`)
		_, err := NewWhereTheISSClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, tracking.ErrMalformedPayload)
	})

	t.Run("missing field", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"latitude":51.5,"altitude":418.2}`)
		_, err := NewWhereTheISSClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, tracking.ErrMalformedPayload)
	})

	t.Run("server error", func(t *testing.T) {
		srv := serveJSON(t, http.StatusServiceUnavailable, `{"error":"down"}`)
		_, err := NewWhereTheISSClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `not json`)
		_, err := NewWhereTheISSClient(srv.Client(), srv.URL).Current(context.Background())
		assert.Error(t, err)
	})
}

func TestOpenNotifyClient(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"message":"success","timestamp":1700000000,"iss_position":{"latitude":"-12.3456","longitude":"145.6789"}}`)
		got, err := NewOpenNotifyClient(srv.Client(), srv.URL).Current(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, -12.3456, got.Latitude, 1e-9)
		assert.InDelta(t, 145.6789, got.Longitude, 1e-9)
		assert.Nil(t, got.Altitude)
	})

	t.Run("failure message", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"message":"failure"}`)
		_, err := NewOpenNotifyClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, tracking.ErrMalformedPayload)
	})

	t.Run("unparseable coordinate", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"message":"success","iss_position":{"latitude":"north","longitude":"1"}}`)
		_, err := NewOpenNotifyClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, tracking.ErrMalformedPayload)
	})

	t.Run("missing position", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"message":"success"}`)
		_, err := NewOpenNotifyClient(srv.Client(), srv.URL).Current(context.Background())
		assert.ErrorIs(t, err, tracking.ErrMalformedPayload)
	})
}

func TestFeedRespectsContext(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"latitude":1,"longitude":2,"altitude":400}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWhereTheISSClient(srv.Client(), srv.URL).Current(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "", want: SourceWhereTheISS},
		{source: SourceWhereTheISS, want: SourceWhereTheISS},
		{source: SourceOpenNotify, want: SourceOpenNotify},
		{source: SourceTLE, want: SourceTLE},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f, err := New(Options{Source: tt.source})
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}

	_, err := New(Options{Source: "carrier-pigeon"})
	assert.Error(t, err)
}
