package messaging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// OutboxDispatcher drains pending outbox events to the event bus. Events are
// appended in the same transaction as the state change they describe, so a
// publish failure here never loses the event; the row stays pending and is
// retried on the next poll until the attempt cap is reached.
type OutboxDispatcher struct {
	log          *logrus.Logger
	outbox       domainRepo.OutboxRepository
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewOutboxDispatcher(
	log *logrus.Logger,
	outbox domainRepo.OutboxRepository,
	publisher Publisher,
	pollInterval time.Duration,
	batchSize, maxAttempts int,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		log:          log,
		outbox:       outbox,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the background polling loop.
func (d *OutboxDispatcher) Start() {
	d.wg.Add(1)
	go d.loop()
}

// Stop shuts the dispatcher down. Safe to call multiple times.
func (d *OutboxDispatcher) Stop() {
	if d.stopped.CompareAndSwap(false, true) {
		close(d.stopChan)
		d.wg.Wait()
		d.log.Info("Outbox dispatcher stopped")
	}
}

func (d *OutboxDispatcher) loop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), d.pollInterval)
			d.Drain(ctx)
			cancel()
		}
	}
}

// Drain publishes one batch of pending events and returns how many were
// published successfully.
func (d *OutboxDispatcher) Drain(ctx context.Context) int {
	events, err := d.outbox.FindPending(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		d.log.Warnf("Failed to fetch pending outbox events: %+v", err)
		return 0
	}

	published := 0
	for _, ev := range events {
		if err := d.publisher.Publish(ctx, ev.Topic, ev.Payload); err != nil {
			d.log.Warnf("Failed to publish outbox event %s to %s: %+v", ev.ID, ev.Topic, err)
			if markErr := d.outbox.MarkFailed(ctx, ev.ID, err.Error(), d.maxAttempts); markErr != nil {
				d.log.Errorf("Failed to record outbox failure for %s: %+v", ev.ID, markErr)
			}
			continue
		}
		if err := d.outbox.MarkPublished(ctx, ev.ID); err != nil {
			// The event will be re-published on the next poll; consumers
			// already tolerate at-least-once delivery.
			d.log.Warnf("Failed to mark outbox event %s published: %+v", ev.ID, err)
			continue
		}
		published++
	}

	if published > 0 {
		d.log.Debugf("Published %d outbox events", published)
	}
	return published
}
