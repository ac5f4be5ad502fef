package app

import (
	"context"
	"fmt"
	"time"

	"github.com/selam-edu/core/internal/config"
	"github.com/selam-edu/core/internal/modules/conversation"
	"github.com/selam-edu/core/internal/modules/escalation"
	"github.com/selam-edu/core/internal/modules/qa"
	"github.com/selam-edu/core/internal/modules/telemetry"
	pkgcron "github.com/selam-edu/core/internal/pkg/cron"
	"github.com/selam-edu/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(
	sched *pkgcron.Scheduler,
	db *gorm.DB,
	cfg *config.AppConfig,
	qaSvc *qa.Service,
	convSvc *conversation.Store,
	escSvc *escalation.Service,
	sink *telemetry.Sink,
	taskSvc *taskqueue.Service,
	logger *zap.Logger,
) {
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:        "retention_sweep",
		Description: "delete conversations, telemetry and resolved escalations past retention",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			days := cfg.Pipeline.ConversationRetentionDays
			if days <= 0 {
				return nil
			}
			cutoff := time.Now().AddDate(0, 0, -days)

			convs, err := convSvc.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				cronLogger.Warn("conversation sweep failed", zap.Error(err))
				return err
			}

			events, err := sink.Sweep(ctx)
			if err != nil {
				cronLogger.Warn("telemetry sweep failed", zap.Error(err))
				return err
			}

			escs, err := escSvc.DeleteResolvedOlderThan(ctx, cutoff)
			if err != nil {
				cronLogger.Warn("escalation sweep failed", zap.Error(err))
				return err
			}

			if err := taskSvc.DeleteCompleted(ctx, cutoff.UnixMilli()); err != nil {
				cronLogger.Warn("task queue sweep failed", zap.Error(err))
			}

			_ = sink.Emit(ctx, telemetry.Event{
				Kind: telemetry.KindRetentionSweep,
				Fields: map[string]interface{}{
					"conversations": convs,
					"events":        events,
					"escalations":   escs,
				},
			})
			cronLogger.Info(fmt.Sprintf("retention sweep done: %d conversations, %d events, %d escalations", convs, events, escs))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "answer_cache_sweep",
		Description: "evict expired answer cache entries",
		Interval:    5 * time.Minute,
		Fn: func(ctx context.Context) error {
			removed := qaSvc.SweepCache()
			if removed > 0 {
				cronLogger.Info(fmt.Sprintf("answer cache sweep removed %d entries", removed))
			}
			return nil
		},
	})
}
