package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TypePruneSweep fans out one prune task per provider.
	TypePruneSweep = "schedule:prune_sweep"
	// TypePruneAccepted prunes one provider's elapsed appointments.
	TypePruneAccepted = "schedule:prune_accepted"
)

type PrunePayload struct {
	ProviderID string    `json:"providerId"`
	Cutoff     time.Time `json:"cutoff"`
}

func NewPruneSweepTask() *asynq.Task {
	return asynq.NewTask(TypePruneSweep, nil)
}

func NewPruneAcceptedTask(providerID string, cutoff time.Time) (*asynq.Task, error) {
	b, err := json.Marshal(PrunePayload{ProviderID: providerID, Cutoff: cutoff})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePruneAccepted, b), nil
}

type providerLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type elapsedPruner interface {
	PruneElapsed(ctx context.Context, providerID string, cutoff time.Time) (int, error)
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Pruner removes accepted appointments that ended more than Retention ago.
type Pruner struct {
	Providers providerLister
	Schedules elapsedPruner
	Queue     enqueuer
	Retention time.Duration
	Logger    *zap.Logger
	Now       func() time.Time
}

// HandleSweep enqueues a prune task for every provider, all sharing one cutoff.
func (p *Pruner) HandleSweep(ctx context.Context, _ *asynq.Task) error {
	ids, err := p.Providers.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}
	cutoff := p.Now().Add(-p.Retention)

	enqueued := 0
	for _, id := range ids {
		task, err := NewPruneAcceptedTask(id, cutoff)
		if err != nil {
			return err
		}
		if _, err := p.Queue.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)); err != nil {
			p.Logger.Error("Failed to enqueue prune task", zap.String("providerID", id), zap.Error(err))
			continue
		}
		enqueued++
	}
	p.Logger.Info("Prune sweep enqueued", zap.Int("providers", enqueued), zap.Time("cutoff", cutoff))
	return nil
}

func (p *Pruner) HandlePrune(ctx context.Context, task *asynq.Task) error {
	var payload PrunePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid prune payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ProviderID == "" {
		return fmt.Errorf("prune payload has no provider id: %w", asynq.SkipRetry)
	}

	removed, err := p.Schedules.PruneElapsed(ctx, payload.ProviderID, payload.Cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune provider %s: %w", payload.ProviderID, err)
	}
	if removed > 0 {
		p.Logger.Info("Pruned elapsed appointments",
			zap.String("providerID", payload.ProviderID), zap.Int("removed", removed))
	}
	return nil
}
