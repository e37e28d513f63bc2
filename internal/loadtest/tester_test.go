package loadtest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnpgdemo/internal/loadtest"
)

type fakeAPI struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]string
	status  string
	deletes int
}

func newFakeAPI(status string) *fakeAPI {
	return &fakeAPI{items: map[int64]string{}, status: status}
}

func (f *fakeAPI) handler() http.Handler {
	router := chi.NewRouter()

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": f.status, "primary_db": "up", "replica_db": "up"})
	})

	router.Post("/items", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title string `json:"title"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.nextID++
		id := f.nextID
		f.items[id] = body.Title
		f.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "title": body.Title})
	})

	router.Get("/items", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	item := func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

		f.mu.Lock()
		defer f.mu.Unlock()

		title, ok := f.items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		if r.Method == http.MethodDelete {
			delete(f.items, id)
			f.deletes++
			_, _ = w.Write([]byte(`{"message":"Item deleted successfully"}`))

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "title": title})
	}

	router.Get("/items/{id}", item)
	router.Put("/items/{id}", item)
	router.Delete("/items/{id}", item)

	return router
}

func TestTester_Run(t *testing.T) {
	api := newFakeAPI("healthy")

	server := httptest.NewServer(api.handler())
	defer server.Close()

	tester := loadtest.New(loadtest.NewClient(server.URL, fastOptions(1)), loadtest.Options{
		Requests:    40,
		Concurrency: 4,
	})

	ctx := context.Background()
	require.NoError(t, tester.CheckHealth(ctx))

	report, err := tester.Run(ctx)
	require.NoError(t, err)

	stats := report.Stats

	assert.Equal(t, 10, stats.Get(loadtest.OperationCreate).Success)
	assert.Equal(t, 10, stats.Get(loadtest.OperationDelete).Success)

	mixed := stats.Get(loadtest.OperationRead).Total() +
		stats.Get(loadtest.OperationUpdate).Total() +
		stats.Get(loadtest.OperationReadAll).Total()
	assert.Equal(t, 20, mixed)

	assert.Equal(t, 40, report.Requests)
	assert.Empty(t, api.items)
	assert.Equal(t, 10, api.deletes)
}

func TestTester_CheckHealthFailsWhenUnhealthy(t *testing.T) {
	server := httptest.NewServer(newFakeAPI("unhealthy").handler())
	defer server.Close()

	tester := loadtest.New(loadtest.NewClient(server.URL, fastOptions(0)), loadtest.Options{Requests: 4})

	assert.ErrorIs(t, tester.CheckHealth(context.Background()), loadtest.ErrUnhealthy)
}

func TestTester_FailuresAreCountedNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tester := loadtest.New(loadtest.NewClient(server.URL, fastOptions(0)), loadtest.Options{
		Requests:    8,
		Concurrency: 2,
		RPS:         1000,
	})

	report, err := tester.Run(context.Background())
	require.NoError(t, err)

	create := report.Stats.Get(loadtest.OperationCreate)
	assert.Equal(t, 2, create.Fail)
	assert.Equal(t, 0, create.Success)
	assert.Equal(t, 2, report.Requests)
}

// inFlight tracks the highest number of requests served at the same time.
type inFlight struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (f *inFlight) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.current.Add(1)
		defer f.current.Add(-1)

		for {
			peak := f.peak.Load()
			if n <= peak || f.peak.CompareAndSwap(peak, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		next.ServeHTTP(w, r)
	})
}

func TestTester_RespectsConcurrency(t *testing.T) {
	tracker := &inFlight{}

	server := httptest.NewServer(tracker.wrap(newFakeAPI("healthy").handler()))
	defer server.Close()

	tester := loadtest.New(loadtest.NewClient(server.URL, fastOptions(0)), loadtest.Options{
		Requests:    60,
		Concurrency: 3,
	})

	report, err := tester.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 60, report.Requests)
	assert.GreaterOrEqual(t, tracker.peak.Load(), int32(1))
	assert.LessOrEqual(t, tracker.peak.Load(), int32(3))
}

func TestTester_RespectsRequestsPerSecond(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	// 40 requests is a create phase of 10 calls; every create fails so
	// nothing else runs.
	tester := loadtest.New(loadtest.NewClient(server.URL, fastOptions(0)), loadtest.Options{
		Requests:    40,
		Concurrency: 10,
		RPS:         20,
	})

	start := time.Now()

	report, err := tester.Run(context.Background())
	require.NoError(t, err)

	elapsed := time.Since(start)

	assert.Equal(t, 10, report.Requests)
	// The first call is free, the other nine wait 50ms each.
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
}
