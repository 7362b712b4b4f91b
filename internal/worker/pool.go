package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertasStock  = "jobs:alertas_stock"
	QueueReporteCierre = "jobs:reporte_cierre"
	QueueEmail         = "jobs:email"

	JobAlertaStock   = "alerta_stock"
	JobReporteCierre = "reporte_cierre"
	JobEmail         = "email"

	// MaxAttempts before a job is moved to its DLQ.
	MaxAttempts = 3
)

var queues = []string{QueueAlertasStock, QueueReporteCierre, QueueEmail}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error re-queues the job
// until MaxAttempts is reached.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists and routes dequeued jobs to
// their handlers. Without Redis, jobs run in a goroutine of the caller's
// process and failures go straight to the log.
type Dispatcher struct {
	rdb      *redis.Client
	handlers map[string]Handler
	push     func(ctx context.Context, key string, data []byte) error
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	d := &Dispatcher{rdb: rdb, handlers: make(map[string]Handler)}
	if rdb != nil {
		d.push = func(ctx context.Context, key string, data []byte) error {
			return rdb.LPush(ctx, key, data).Err()
		}
	}
	return d
}

// Register binds a handler to a job type. Call before StartWorkerPool.
func (d *Dispatcher) Register(jobType string, h Handler) {
	d.handlers[jobType] = h
}

func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload AlertaStockPayload) error {
	return d.enqueue(ctx, QueueAlertasStock, JobAlertaStock, payload)
}

func (d *Dispatcher) EnqueueReporteCierre(ctx context.Context, payload ReporteCierrePayload) error {
	return d.enqueue(ctx, QueueReporteCierre, JobReporteCierre, payload)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	if d.push == nil {
		go d.dispatch(context.Background(), queue, job)
		return nil
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.push(ctx, queue, encoded)
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func StartWorkerPool(ctx context.Context, d *Dispatcher, numWorkers int) {
	if d.rdb == nil {
		log.Warn().Msg("worker pool disabled: no redis, jobs run inline")
		return
	}
	for i := 0; i < numWorkers; i++ {
		go d.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := d.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			var job Job
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				log.Error().Str("queue", result[0]).Err(err).Msg("failed to unmarshal job")
				continue
			}
			d.dispatch(ctx, result[0], job)
		}
	}
}

// dispatch runs the job's handler and applies the retry / DLQ policy.
func (d *Dispatcher) dispatch(ctx context.Context, queue string, job Job) {
	h, ok := d.handlers[job.Type]
	if !ok {
		d.sendToDLQ(ctx, queue, job, "no handler registered")
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxAttempts || d.push == nil {
		d.sendToDLQ(ctx, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, re-queued")
	encoded, mErr := json.Marshal(job)
	if mErr == nil {
		mErr = d.push(ctx, queue, encoded)
	}
	if mErr != nil {
		log.Error().Err(mErr).Str("queue", queue).Msg("failed to re-queue job")
	}
}
