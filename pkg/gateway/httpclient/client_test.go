package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
)

func TestClientPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/predict", r.URL.Path)
		var raw models.RawSubmission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		if raw.Age == "abc" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Umur harus berupa angka yang valid."})
			return
		}
		json.NewEncoder(w).Encode(models.Assessment{Label: "Normal_Weight"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	a, err := c.Predict(context.Background(), models.RawSubmission{Age: "25"})
	require.NoError(t, err)
	assert.Equal(t, "Normal_Weight", a.Label)

	_, err = c.Predict(context.Background(), models.RawSubmission{Age: "abc"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Umur harus berupa angka yang valid.", apiErr.Message)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesDialErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &url.Error{Op: "Post", URL: "http://svc", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotResendAfterConnect(t *testing.T) {
	for _, sendErr := range []error{
		&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET},
		&net.OpError{Op: "write", Net: "tcp", Err: syscall.EPIPE},
		context.DeadlineExceeded,
	} {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return sendErr
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls, "%v", sendErr)
	}
}

func TestClientPredictSendsOnceWhenConnectionDrops(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Predict(context.Background(), models.RawSubmission{Age: "25"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
