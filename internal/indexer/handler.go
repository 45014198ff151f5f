// Package indexer runs the queue-driven indexing pipeline: a Kafka consumer
// group receiving thread change events and a handler that re-embeds and
// upserts the affected thread.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
	"github.com/community-brain/braintrust/internal/metrics"
)

// ThreadReader fetches thread content for indexing.
type ThreadReader interface {
	GetThread(ctx context.Context, id string) (domain.Thread, error)
}

// Handler processes change events from the indexing queue. Every message is
// marked processed regardless of outcome: delivery is at-least-once and
// broker redelivery after a crash is the only retry mechanism.
type Handler struct {
	content ThreadReader
	embed   domain.Embedder
	index   domain.VectorIndex
	logger  *zap.Logger
}

// NewHandler creates a change event handler.
func NewHandler(content ThreadReader, embed domain.Embedder, index domain.VectorIndex, logger *zap.Logger) *Handler {
	return &Handler{content: content, embed: embed, index: index, logger: logger}
}

// Setup implements sarama.ConsumerGroupHandler.
func (h *Handler) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (h *Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.Process(session.Context(), message.Value)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// Process handles one queue message payload. It never fails the message:
// malformed payloads and unknown event kinds are discarded, indexing errors
// are logged and counted. Callers ack unconditionally.
func (h *Handler) Process(ctx context.Context, value []byte) {
	event, err := domain.ParseChangeEvent(value)
	if err != nil {
		h.logger.Warn("discarding malformed change event", zap.Error(err))
		metrics.QueueMessagesTotal.WithLabelValues("discarded").Inc()
		return
	}

	if !event.Known() {
		h.logger.Warn("discarding change event of unknown kind",
			zap.String("type", event.Type),
			zap.String("thread_id", event.ThreadID))
		metrics.QueueMessagesTotal.WithLabelValues("discarded").Inc()
		return
	}

	if err := h.IndexThread(ctx, event.ThreadID); err != nil {
		h.logger.Error("indexing failed, message acked anyway",
			zap.String("type", event.Type),
			zap.String("thread_id", event.ThreadID),
			zap.Error(err))
		metrics.QueueMessagesTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.QueueMessagesTotal.WithLabelValues("processed").Inc()
}

// IndexThread re-indexes a single thread: fetch current content, embed
// title and body, upsert the vector keyed by thread id. Re-running it for
// the same thread replaces the previous entry.
func (h *Handler) IndexThread(ctx context.Context, threadID string) error {
	start := time.Now()

	thread, err := h.content.GetThread(ctx, threadID)
	if err != nil {
		metrics.IndexedThreadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("get thread: %w", err)
	}

	embResult, err := h.embed.Embed(ctx, thread.Title+"\n\n"+thread.Content)
	if err != nil {
		metrics.IndexedThreadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("embed thread: %w", err)
	}

	doc := domain.IndexedDocument{
		ID:     thread.ID,
		Vector: embResult.Embedding,
		Metadata: domain.ThreadMetadata{
			ThreadID:  thread.ID,
			Title:     thread.Title,
			Excerpt:   domain.Excerpt(thread.Content, domain.ExcerptLength),
			Tags:      thread.Tags,
			CreatedAt: thread.CreatedAt,
		},
	}

	if err := h.index.Upsert(ctx, doc); err != nil {
		metrics.IndexedThreadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("upsert thread: %w", err)
	}

	metrics.IndexedThreadsTotal.WithLabelValues("success").Inc()
	metrics.IndexingDuration.Observe(time.Since(start).Seconds())

	h.logger.Debug("thread indexed",
		zap.String("thread_id", thread.ID),
		zap.Duration("duration", time.Since(start)))

	return nil
}
