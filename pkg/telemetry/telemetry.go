// Package telemetry publishes a per-tick summary to Redis for external observers.
// Publication is an add-on: a missing or unreachable Redis is never on the
// critical path of applying a change-set.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/starmesh-systems/starmesh/pkg/util"
)

// Channel is the pub/sub channel tick summaries are published to.
const Channel = "starmesh:ticks"

// TickSummary is one published message: the shape of a single tick's work.
type TickSummary struct {
	Tick           int64 `json:"tick"`
	Del            int   `json:"del"`
	Update         int   `json:"update"`
	Add            int   `json:"add"`
	DurationMs     int64 `json:"duration_ms"`
	WorkersOK      int   `json:"workers_ok"`
	WorkersFailed  int   `json:"workers_failed"`
}

// Publisher publishes tick summaries to Redis. A nil *Publisher is valid and
// every method on it is a no-op, so callers can construct it unconditionally
// and skip the "is telemetry configured" check at every call site.
type Publisher struct {
	client *redis.Client
}

// NewPublisher connects to addr. An empty addr returns a nil *Publisher — the
// caller gets a usable no-op rather than needing to branch.
func NewPublisher(addr string) *Publisher {
	if addr == "" {
		return nil
	}
	return &Publisher{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Publish sends one tick summary. Failure is logged and swallowed: telemetry
// must never abort or delay a tick.
func (p *Publisher) Publish(ctx context.Context, s TickSummary) {
	if p == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		util.WithTick(s.Tick).Warnf("telemetry: marshal tick summary: %v", err)
		return
	}
	if err := p.client.Publish(ctx, Channel, data).Err(); err != nil {
		util.WithTick(s.Tick).Warnf("telemetry: publish to %s: %v", Channel, err)
	}
}

// Close releases the underlying Redis connection, if any.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}

// NewTickSummary builds a TickSummary from a change-set's shape and the
// fan-out's outcome.
func NewTickSummary(tick int64, del, update, add int, duration time.Duration, workersOK, workersFailed int) TickSummary {
	return TickSummary{
		Tick:          tick,
		Del:           del,
		Update:        update,
		Add:           add,
		DurationMs:    duration.Milliseconds(),
		WorkersOK:     workersOK,
		WorkersFailed: workersFailed,
	}
}
