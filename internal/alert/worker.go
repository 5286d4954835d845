// Package alert tells the host about new access requests over out-of-band
// channels (browser push, Telegram). Delivery is best effort.
package alert

import (
	"context"
	"fmt"
	"log"

	"welcomewindow/backend/internal/models"
)

// Alert is the message sent to the host.
type Alert struct {
	VisitorID uint   `json:"visitor_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Channel delivers alerts to the host.
type Channel interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// WorkerPool manages a pool of workers for sending alerts.
type WorkerPool struct {
	size     int
	jobs     chan models.PendingVisitor
	channels []Channel
	siteName string
}

// NewWorkerPool creates a new worker pool. queueSize bounds the number of
// alerts waiting for a worker.
func NewWorkerPool(size, queueSize int, siteName string, channels ...Channel) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size:     size,
		jobs:     make(chan models.PendingVisitor, queueSize),
		channels: channels,
		siteName: siteName,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("INFO: [Alert] worker %d started", id)
	for {
		select {
		case visitor := <-wp.jobs:
			wp.send(ctx, visitor)
		case <-ctx.Done():
			log.Printf("INFO: [Alert] worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert for a new access request. It never blocks; when
// the queue is full the alert is dropped.
func (wp *WorkerPool) Dispatch(visitor models.PendingVisitor) {
	if len(wp.channels) == 0 {
		return
	}
	select {
	case wp.jobs <- visitor:
	default:
		log.Printf("WARN: [Alert] queue full, dropping alert for visitor %d", visitor.ID)
	}
}

// Channels returns the names of the configured channels.
func (wp *WorkerPool) Channels() []string {
	names := make([]string, 0, len(wp.channels))
	for _, ch := range wp.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (wp *WorkerPool) send(ctx context.Context, visitor models.PendingVisitor) {
	a := Alert{
		VisitorID: visitor.ID,
		Title:     fmt.Sprintf("%s: someone is at the door", wp.siteName),
		Body:      fmt.Sprintf("%s (%s) is asking to come in.", visitor.Name, visitor.Email),
	}
	for _, ch := range wp.channels {
		if err := ch.Notify(ctx, a); err != nil {
			log.Printf("ERROR: [Alert] %s failed for visitor %d: %v", ch.Name(), visitor.ID, err)
		}
	}
}
