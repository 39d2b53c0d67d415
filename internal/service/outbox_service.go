package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository"
	"yatube/pkg/logging"
)

type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer drains queued social events to a Sender
type OutboxRelayer struct {
	repo      repository.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
	log       *zap.Logger
}

func NewOutboxRelayer(repo repository.OutboxRepository, sender Sender, batchSize int, interval time.Duration) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: batchSize,
		interval:  interval,
		sender:    sender,
		log:       logging.WithComponent("outbox"),
	}
}

// Run drains on every tick until ctx is done
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce delivers one batch and returns how many rows were sent
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed", zap.Uint64("id", ob.ID), zap.Int("retry", ob.Retry+1), zap.Error(err))
			if uerr := r.repo.RetryUpdate(ctx, ob.ID); uerr != nil {
				r.log.Error("outbox retry update failed", zap.Uint64("id", ob.ID), zap.Error(uerr))
			}
			continue
		}
		if uerr := r.repo.SuccessUpdate(ctx, ob.ID); uerr != nil {
			r.log.Error("outbox success update failed", zap.Uint64("id", ob.ID), zap.Error(uerr))
			continue
		}
		sent++
	}
	return sent
}

// LogSender writes the event to the log
func LogSender(log *zap.Logger) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		log.Info("outbox event",
			zap.String("type", ob.EventType),
			zap.Uint64("actor", ob.ActorID),
			zap.Uint64("target", ob.TargetID),
			zap.Uint64("post_id", ob.PostID),
			zap.String("payload", ob.Payload))
		return nil
	}
}

// KafkaSender publishes the payload keyed by the target user
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.TargetID), ob.EventType, []byte(ob.Payload))
	}
}

// MultiSender calls every sender and joins their errors
func MultiSender(senders ...Sender) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		var errs []error
		for _, s := range senders {
			if err := s(ctx, ob); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
