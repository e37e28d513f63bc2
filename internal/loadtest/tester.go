package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	itemDto "cnpgdemo/internal/domains/item/model/dto"
	"cnpgdemo/shared/constant"
)

var ErrUnhealthy = errors.New("API is not available")

type Options struct {
	Requests    int
	Concurrency int
	// RPS of zero or less means no rate cap.
	RPS float64
}

// Tester drives the create, mixed and delete phases against one API.
type Tester struct {
	client  *Client
	opts    Options
	stats   *Stats
	sem     *semaphore.Weighted
	limiter *rate.Limiter

	mu  sync.Mutex
	ids []int64
}

func New(client *Client, opts Options) *Tester {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	return &Tester{
		client:  client,
		opts:    opts,
		stats:   NewStats(),
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
		limiter: limiter,
	}
}

// CheckHealth fails unless the API reports both databases up.
func (t *Tester) CheckHealth(ctx context.Context) error {
	health, err := t.client.Health(ctx)
	if err != nil {
		return errors.Wrap(ErrUnhealthy, err.Error())
	}

	if health.Status != constant.HealthStatusHealthy {
		return errors.Wrapf(ErrUnhealthy, "status %q", health.Status)
	}

	return nil
}

// Run executes every phase and returns the report. Individual failures are
// only counted. A cancelled ctx stops the run early with a partial report.
func (t *Tester) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	log.Info().Int("requests", t.opts.Requests).Int("concurrency", t.opts.Concurrency).Msg("Starting load test")

	t.phase(ctx, t.opts.Requests/4, func(ctx context.Context, i int) {
		t.create(ctx, i)
	})

	ids := t.createdIDs()

	if len(ids) > 0 {
		t.phase(ctx, t.opts.Requests/2, func(ctx context.Context, _ int) {
			t.mixed(ctx, ids[rand.IntN(len(ids))])
		})
	}

	t.phase(ctx, len(ids), func(ctx context.Context, i int) {
		t.delete(ctx, ids[i])
	})

	report := Report{
		Duration: time.Since(start),
		Requests: t.stats.Total(),
		Stats:    t.stats,
	}

	return report, ctx.Err()
}

// phase runs n calls, at most Concurrency at a time and no faster than the
// rate limiter allows, and waits for all of them.
func (t *Tester) phase(ctx context.Context, n int, call func(ctx context.Context, i int)) {
	var group errgroup.Group

	for i := 0; i < n; i++ {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			break
		}

		group.Go(func() error {
			defer t.sem.Release(1)

			if err := t.limiter.Wait(ctx); err != nil {
				return nil
			}

			call(ctx, i)

			return nil
		})
	}

	_ = group.Wait()
}

func (t *Tester) record(op Operation, start time.Time, err error) {
	if err != nil {
		log.Debug().Err(err).Str("operation", string(op)).Msg("request failed")
	}

	t.stats.Record(op, time.Since(start), err)
}

func (t *Tester) create(ctx context.Context, i int) {
	start := time.Now()
	title := fmt.Sprintf("Item %d", i)
	description := "Test item " + title

	item, err := t.client.CreateItem(ctx, itemDto.CreateItemRequest{Title: title, Description: &description})
	t.record(OperationCreate, start, err)

	if err == nil {
		t.mu.Lock()
		t.ids = append(t.ids, item.ID)
		t.mu.Unlock()
	}
}

func (t *Tester) mixed(ctx context.Context, id int64) {
	start := time.Now()

	switch rand.IntN(3) {
	case 0:
		_, err := t.client.GetItem(ctx, id)
		t.record(OperationRead, start, err)
	case 1:
		title := fmt.Sprintf("Updated %d", id)
		description := "Updated test item " + title

		_, err := t.client.UpdateItem(ctx, id, itemDto.CreateItemRequest{Title: title, Description: &description})
		t.record(OperationUpdate, start, err)
	default:
		_, err := t.client.ListItems(ctx)
		t.record(OperationReadAll, start, err)
	}
}

func (t *Tester) delete(ctx context.Context, id int64) {
	start := time.Now()

	err := t.client.DeleteItem(ctx, id)
	t.record(OperationDelete, start, err)
}

func (t *Tester) createdIDs() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]int64(nil), t.ids...)
}
