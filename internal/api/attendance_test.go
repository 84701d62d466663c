package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/campuskit/rollcall/internal/errors"
)

func TestNewAttendanceClient_UsesInjectedClient(t *testing.T) {
	injected := &http.Client{Timeout: 3 * time.Second}
	client := NewAttendanceClient("http://backend", injected)
	assert.Same(t, injected, client.client)
}

func TestFetchAttendance_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attendance", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"attendance":[
			{"rollNo":"7","name":"Ann","attendancePercentage":92.5,"present":true},
			{"name":"Alexandria","rollNo":"8"}
		]}`))
	}))
	defer srv.Close()

	client := NewAttendanceClient(srv.URL, nil)
	batch, err := client.FetchAttendance(context.Background(), "tok-1")

	require.NoError(t, err)
	require.Len(t, batch.Records, 2)
	// Headers follow the first record's key order.
	assert.Equal(t, []string{"rollNo", "name", "attendancePercentage", "present"}, batch.Headers)
	assert.Equal(t, "Ann", batch.Records[0]["name"])
	assert.Equal(t, 92.5, batch.Records[0]["attendancePercentage"])
	assert.Equal(t, true, batch.Records[0]["present"])
	assert.Equal(t, "Alexandria", batch.Records[1]["name"])
}

func TestFetchAttendance_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"attendance":[]}`))
	}))
	defer srv.Close()

	client := NewAttendanceClient(srv.URL, nil)
	batch, err := client.FetchAttendance(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.True(t, batch.Empty())
	assert.Empty(t, batch.Headers)
}

func TestFetchAttendance_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token invalid"}`))
	}))
	defer srv.Close()

	client := NewAttendanceClient(srv.URL, nil)
	_, err := client.FetchAttendance(context.Background(), "tok-stale")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindSessionExpired, apperrors.KindOf(err))
}

func TestFetchAttendance_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
	}))
	defer srv.Close()

	client := NewAttendanceClient(srv.URL, nil)
	_, err := client.FetchAttendance(context.Background(), "tok-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindFetch, apperrors.KindOf(err))
	assert.Equal(t, "database unavailable", apperrors.UserMessage(err))
}

func TestFetchAttendance_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewAttendanceClient(srv.URL, nil)
	_, err := client.FetchAttendance(context.Background(), "tok-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindFetch, apperrors.KindOf(err))
}

func TestFetchAttendance_NoToken(t *testing.T) {
	client := NewAttendanceClient("http://unused", nil)
	_, err := client.FetchAttendance(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRecordKeys_DocumentOrder(t *testing.T) {
	keys, err := recordKeys(json.RawMessage(`{"zeta":1,"alpha":"x","midNested":{"a":[1,2]},"omega":true}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "midNested", "omega"}, keys)
}

func TestRecordKeys_NotAnObject(t *testing.T) {
	_, err := recordKeys(json.RawMessage(`[1,2,3]`))
	require.Error(t, err)
}
