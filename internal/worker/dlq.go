package worker

// dlq.go: Dead Letter Queue
// Jobs that exceed MaxAttempts (or have no handler) are moved here for manual
// inspection. Uses a Redis list per source queue: dlq:{original_queue}

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

func (d *Dispatcher) sendToDLQ(ctx context.Context, queue string, job Job, reason string) {
	logEvt := log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts)
	if d.push == nil {
		logEvt.Msg("dlq: job dropped (no redis)")
		return
	}

	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := d.push(ctx, DLQPrefix+queue, data); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQPrefix+queue).Msg("dlq: failed to push to DLQ")
		return
	}
	logEvt.Msg("dlq: job moved to dead letter queue")
}

// DLQLengths returns the number of entries per DLQ for /health.
func (d *Dispatcher) DLQLengths(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(queues))
	if d.rdb == nil {
		return out, nil
	}
	for _, q := range queues {
		n, err := d.rdb.LLen(ctx, DLQPrefix+q).Result()
		if err != nil {
			return nil, err
		}
		out[q] = n
	}
	return out, nil
}
