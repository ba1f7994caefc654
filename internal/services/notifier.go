package services

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

// Notifier consumes per-file completion events from the ingestion
// coordinator and fans them out: one message per file to the RabbitMQ
// events queue, plus an SSE push to the uploading admin's connected
// clients. Processing keeps going if either sink is unavailable.
type Notifier struct {
	hub  *SSEHub
	mq   *RabbitMQService
	done chan struct{}
	once sync.Once
}

func NewNotifier(hub *SSEHub, mq *RabbitMQService) *Notifier {
	return &Notifier{hub: hub, mq: mq, done: make(chan struct{})}
}

// Start drains the event stream on a background goroutine until the stream
// is closed.
func (n *Notifier) Start(events <-chan ingest.Completion) {
	go func() {
		defer close(n.done)
		for event := range events {
			n.dispatch(event)
		}
	}()
}

// Wait blocks until the event stream has been fully drained.
func (n *Notifier) Wait() {
	<-n.done
}

func (n *Notifier) dispatch(event ingest.Completion) {
	if n.mq != nil {
		if err := n.mq.PublishMessage(FileEventsQueue, event); err != nil {
			logrus.Errorf("Failed to publish completion for %s: %v", event.Filename, err)
		}
	}
	if n.hub != nil {
		n.hub.Broadcast(event.AdminID, "file_processed", event)
	}
	logrus.Infof("Batch %s: %s -> %s", event.BatchID, event.Filename, event.Status)
}
