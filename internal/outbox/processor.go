package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"corebanking/internal/domain"
	kafka_infra "corebanking/internal/infrastructure/kafka"
)

type OutboxRepository interface {
	GetPendingMessages(ctx context.Context, querier domain.Querier, limit int) ([]domain.OutboxMessage, error)
	UpdateMessageStatusTx(ctx context.Context, querier domain.Querier, id string, status domain.OutboxMessageStatus) error
}

const batchSize = 10

// Processor polls the outbox table and publishes pending ledger events to
// Kafka. Each message is marked SENT in its own store transaction only after
// the broker acks the write, so a crash between publish and mark can at
// worst re-publish (at-least-once delivery).
type Processor struct {
	db           domain.DB
	outboxRepo   OutboxRepository
	producer     kafka_infra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

func NewProcessor(
	db domain.DB,
	outboxRepo OutboxRepository,
	producer kafka_infra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:           db,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled. Blocking; callers run it in a goroutine.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("outbox processor started", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopping")
			return
		case <-ticker.C:
			p.processPending(ctx)
		}
	}
}

func (p *Processor) processPending(ctx context.Context) {
	queryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	messages, err := p.outboxRepo.GetPendingMessages(queryCtx, p.db, batchSize)
	if err != nil {
		p.logger.Error("failed to get pending outbox messages", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}
	p.logger.Debug("found pending outbox messages", zap.Int("count", len(messages)))

	for _, msg := range messages {
		if err := p.publishOne(ctx, msg); err != nil {
			p.logger.Error("failed to publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
		}
	}
}

func (p *Processor) publishOne(ctx context.Context, msg domain.OutboxMessage) error {
	if err := p.producer.Produce(ctx, msg.Key, msg.Payload); err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := p.outboxRepo.UpdateMessageStatusTx(ctx, tx, msg.ID, domain.OutboxStatusSent); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.logger.Debug("outbox message published",
		zap.String("message_id", msg.ID),
		zap.String("topic", msg.Topic))
	return nil
}
