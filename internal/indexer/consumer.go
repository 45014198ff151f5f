package indexer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
)

// State is the consumer lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

// String returns the state name for logs and health reports.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

const reconnectBackoff = 5 * time.Second

// Config holds the indexing consumer settings.
type Config struct {
	Brokers []string
	GroupID string
	Topic   string
}

// ContentCloser releases the content store owned by the consumer.
type ContentCloser interface {
	Close()
}

// Consumer owns the Kafka consumer group lifecycle. Session management and
// partition rebalancing are delegated to sarama; the Consume loop re-enters
// after every rebalance and backs off on transient broker errors.
type Consumer struct {
	cfg     Config
	handler sarama.ConsumerGroupHandler
	index   domain.VectorIndex
	content ContentCloser
	logger  *zap.Logger

	group sarama.ConsumerGroup
	state atomic.Int32

	cancel context.CancelFunc
	// wg tracks the consume loop. errWG tracks the error drain, which only
	// exits once the group is closed, so it is waited separately.
	wg    sync.WaitGroup
	errWG sync.WaitGroup

	// newGroup is swapped in tests.
	newGroup func(brokers []string, groupID string, cfg *sarama.Config) (sarama.ConsumerGroup, error)
}

// NewConsumer creates the indexing consumer. content may be nil when the
// content store's lifetime is managed elsewhere.
func NewConsumer(cfg Config, handler sarama.ConsumerGroupHandler, index domain.VectorIndex, content ContentCloser, logger *zap.Logger) *Consumer {
	return &Consumer{
		cfg:      cfg,
		handler:  handler,
		index:    index,
		content:  content,
		logger:   logger,
		newGroup: sarama.NewConsumerGroup,
	}
}

// State returns the current lifecycle state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Running reports whether the consume loop is active.
func (c *Consumer) Running() bool {
	return c.State() == StateRunning
}

// Start ensures the index exists, joins the consumer group and launches the
// consume loop. Calling Start on a non-stopped consumer is an error.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("consumer is %s, not stopped", c.State())
	}

	if err := c.index.Initialize(ctx); err != nil {
		c.state.Store(int32(StateStopped))
		return fmt.Errorf("initialize index: %w", err)
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Return.Errors = true

	group, err := c.newGroup(c.cfg.Brokers, c.cfg.GroupID, saramaCfg)
	if err != nil {
		c.state.Store(int32(StateStopped))
		return fmt.Errorf("create consumer group: %w", err)
	}
	c.group = group

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.consumeLoop(loopCtx)

	c.errWG.Add(1)
	go c.errorLoop()

	c.state.Store(int32(StateRunning))

	c.logger.Info("indexing consumer started",
		zap.Strings("brokers", c.cfg.Brokers),
		zap.String("group_id", c.cfg.GroupID),
		zap.String("topic", c.cfg.Topic))

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		if err := c.group.Consume(ctx, []string{c.cfg.Topic}, c.handler); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("consume session failed, reconnecting", zap.Error(err))
			select {
			case <-time.After(reconnectBackoff):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		// nil error means a rebalance ended the session, re-enter immediately.
	}
}

func (c *Consumer) errorLoop() {
	defer c.errWG.Done()
	for err := range c.group.Errors() {
		c.logger.Error("consumer group error", zap.Error(err))
	}
}

// Stop shuts the consumer down: cancel the consume context, wait for the
// in-flight handler, close the group and the content store. Each step is
// best-effort, later steps run even when earlier ones fail.
func (c *Consumer) Stop(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("consumer is %s, not running", c.State())
	}
	defer c.state.Store(int32(StateStopped))

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	var firstErr error

	select {
	case <-done:
	case <-ctx.Done():
		firstErr = fmt.Errorf("waiting for consume loop: %w", ctx.Err())
	}

	if err := c.group.Close(); err != nil {
		c.logger.Error("closing consumer group", zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("close consumer group: %w", err)
		}
	}
	c.errWG.Wait()

	if c.content != nil {
		c.content.Close()
	}

	c.logger.Info("indexing consumer stopped")

	return firstErr
}
