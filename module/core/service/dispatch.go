package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadsync/fleet-telemetry/module/core/domain"
)

// EvalJob is one committed sample handed to the background evaluators,
// together with the position that immediately preceded it.
type EvalJob struct {
	Driver *domain.Driver
	Prev   *domain.Position
	Next   *domain.Position
}

type geofenceEvaluator interface {
	Evaluate(ctx context.Context, driver *domain.Driver, prev, next *domain.Position) error
}

type proximityEvaluator interface {
	Evaluate(ctx context.Context, driver *domain.Driver, next *domain.Position) error
}

const evalTimeout = 15 * time.Second

// Dispatcher fans samples out to sharded single-consumer queues keyed by
// device id. Jobs for one device always land on the same shard, so shard
// FIFO order preserves per-device arrival order; different devices evaluate
// in parallel. A full shard drops the job: the next sample re-evaluates
// membership from stored state, which the contract accepts.
type Dispatcher struct {
	geofence  geofenceEvaluator
	proximity proximityEvaluator
	shards    []chan EvalJob
	wg        sync.WaitGroup
}

func NewDispatcher(geofence geofenceEvaluator, proximity proximityEvaluator, shardCount, queueSize int) *Dispatcher {
	shards := make([]chan EvalJob, shardCount)
	for i := range shards {
		shards[i] = make(chan EvalJob, queueSize)
	}
	return &Dispatcher{
		geofence:  geofence,
		proximity: proximity,
		shards:    shards,
	}
}

func (d *Dispatcher) Start() {
	for _, shard := range d.shards {
		d.wg.Add(1)
		go func(jobs <-chan EvalJob) {
			defer d.wg.Done()
			for job := range jobs {
				d.process(job)
			}
		}(shard)
	}
}

// Stop closes the queues and waits for in-flight evaluations to finish.
func (d *Dispatcher) Stop() {
	for _, shard := range d.shards {
		close(shard)
	}
	d.wg.Wait()
}

func (d *Dispatcher) Enqueue(job EvalJob) bool {
	shard := d.shards[deviceShard(job.Next.DeviceID, len(d.shards))]
	select {
	case shard <- job:
		return true
	default:
		return false
	}
}

// process runs both evaluators for one sample. A panic or error in either
// is logged with device context and must never escape: a lost evaluation is
// invisible to the device and recovered by the next sample.
func (d *Dispatcher) process(job EvalJob) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"device_id": job.Next.DeviceID,
				"driver_id": job.Driver.ID,
				"panic":     r,
			}).Error("evaluation panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	if err := d.geofence.Evaluate(ctx, job.Driver, job.Prev, job.Next); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"device_id": job.Next.DeviceID,
			"driver_id": job.Driver.ID,
		}).Error("geofence evaluation failed")
	}

	if err := d.proximity.Evaluate(ctx, job.Driver, job.Next); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"device_id": job.Next.DeviceID,
			"driver_id": job.Driver.ID,
		}).Error("load proximity evaluation failed")
	}
}
