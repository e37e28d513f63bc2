package loadtest

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type Operation string

const (
	OperationCreate  Operation = "create"
	OperationRead    Operation = "read"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationReadAll Operation = "read_all"
)

// Operations is the report order.
var Operations = []Operation{
	OperationCreate,
	OperationRead,
	OperationUpdate,
	OperationDelete,
	OperationReadAll,
}

type OperationStats struct {
	Success int
	Fail    int
	Elapsed time.Duration
}

func (s OperationStats) Total() int {
	return s.Success + s.Fail
}

func (s OperationStats) SuccessRate() float64 {
	if s.Total() == 0 {
		return 0
	}

	return float64(s.Success) / float64(s.Total()) * 100
}

func (s OperationStats) AverageLatency() time.Duration {
	if s.Total() == 0 {
		return 0
	}

	return s.Elapsed / time.Duration(s.Total())
}

// Stats is safe for concurrent use.
type Stats struct {
	mu  sync.Mutex
	ops map[Operation]*OperationStats
}

func NewStats() *Stats {
	return &Stats{ops: make(map[Operation]*OperationStats, len(Operations))}
}

func (s *Stats) Record(op Operation, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.ops[op]
	if !ok {
		entry = &OperationStats{}
		s.ops[op] = entry
	}

	if err != nil {
		entry.Fail++
	} else {
		entry.Success++
	}

	entry.Elapsed += elapsed
}

func (s *Stats) Get(op Operation) OperationStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.ops[op]; ok {
		return *entry
	}

	return OperationStats{}
}

func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, entry := range s.ops {
		total += entry.Total()
	}

	return total
}

type Report struct {
	Duration time.Duration
	Requests int
	Stats    *Stats
}

func (r Report) RequestsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}

	return float64(r.Requests) / r.Duration.Seconds()
}

// Write prints the summary. Operations that never ran are left out.
func (r Report) Write(w io.Writer) error {
	var b strings.Builder

	b.WriteString("\nLoad Test Complete!\n")
	fmt.Fprintf(&b, "Total duration: %.2f seconds\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "Average requests per second: %.2f\n", r.RequestsPerSecond())
	b.WriteString("\nTest Results:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")

	for _, op := range Operations {
		stats := r.Stats.Get(op)
		if stats.Total() == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(string(op)))
		fmt.Fprintf(&b, "Total requests: %d\n", stats.Total())
		fmt.Fprintf(&b, "Success rate: %.2f%%\n", stats.SuccessRate())
		fmt.Fprintf(&b, "Average response time: %.4fs\n", stats.AverageLatency().Seconds())
	}

	_, err := io.WriteString(w, b.String())

	return err
}
