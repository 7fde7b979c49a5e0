package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/api/metrics"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 15 * time.Second
)

// Dispatcher delivers queued mails on a fixed set of workers. Mails for the
// same recipient always land on the same worker, so they go out in the order
// they were queued.
type Dispatcher struct {
	workers []chan ports.Mail
	mailer  ports.Mailer
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Mail, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Mail, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Workers exit after Close once their
// channel is drained, or when ctx is cancelled, discarding what is still
// buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Close stops accepting mails and waits for the workers to drain.
// Enqueue must not be called after Close.
func (d *Dispatcher) Close() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// Enqueue hands m to the worker responsible for its recipient. It never
// blocks: when that worker's buffer is full the mail is dropped and false
// is returned.
func (d *Dispatcher) Enqueue(m ports.Mail) bool {
	idx := d.shardIndex(m.To)
	select {
	case d.workers[idx] <- m:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("to", m.To).Int("worker_id", idx).Msg("notification queue full, mail dropped")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Mail) {
	defer d.wg.Done()
	depth := metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		if ctx.Err() != nil {
			d.discard(id, ch, depth)
			return
		}
		select {
		case <-ctx.Done():
			d.discard(id, ch, depth)
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(ctx, id, m)
		}
	}
}

// discard empties a cancelled worker's buffer so the queue depth gauge
// settles and the lost mails are accounted for.
func (d *Dispatcher) discard(id int, ch <-chan ports.Mail, depth prometheus.Gauge) {
	dropped := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				d.logDiscarded(id, dropped)
				return
			}
			depth.Dec()
			dropped++
		default:
			d.logDiscarded(id, dropped)
			return
		}
	}
}

func (d *Dispatcher) logDiscarded(id, dropped int) {
	if dropped == 0 {
		return
	}
	metrics.NotificationsTotal.WithLabelValues("dropped").Add(float64(dropped))
	d.log.Warn().Int("worker_id", id).Int("dropped", dropped).Msg("dispatcher stopped with undelivered mail")
}

func (d *Dispatcher) deliver(ctx context.Context, id int, m ports.Mail) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.mailer.Send(sendCtx, m)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("to", m.To).
			Str("subject", m.Subject).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
