package loadtest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnpgdemo/internal/loadtest"
)

func fastOptions(retries int) loadtest.ClientOptions {
	return loadtest.ClientOptions{
		Timeout:        2 * time.Second,
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		Retries:        retries,
		Backoff:        time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestClient_RetriesThrottledRequests(t *testing.T) {
	var calls atomic.Int32

	requestIDs := make(chan string, 3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs <- r.Header.Get("X-Request-ID")

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)

			return
		}

		_, _ = w.Write([]byte(`{"id":9,"title":"A"}`))
	}))
	defer server.Close()

	client := loadtest.NewClient(server.URL, fastOptions(3))
	defer client.Close()

	item, err := client.GetItem(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), item.ID)
	assert.Equal(t, int32(3), calls.Load())

	first := <-requestIDs
	assert.NotEmpty(t, first)
	assert.Equal(t, first, <-requestIDs)
	assert.Equal(t, first, <-requestIDs)
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := loadtest.NewClient(server.URL, fastOptions(2))

	_, err := client.ListItems(context.Background())

	var statusErr *loadtest.StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := loadtest.NewClient(server.URL, fastOptions(3))

	err := client.DeleteItem(context.Background(), 1)

	var statusErr *loadtest.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := loadtest.NewClient(url, fastOptions(1))

	_, err := client.Health(context.Background())
	assert.Error(t, err)
}
