package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// LogHooks writes every lifecycle event to logger at Info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn",
				"session_id", e.SessionID,
				"source", e.Source,
				"keyword", e.Keyword,
				"pattern", e.Pattern,
				"template", e.Template,
			)
		},
		OnMemoryPush: func(ctx context.Context, e *domain.MemoryEvent) {
			logger.InfoContext(ctx, "memory_push", "session_id", e.SessionID, "keyword", e.Keyword, "depth", e.Depth)
		},
		OnMemoryRecall: func(ctx context.Context, e *domain.MemoryEvent) {
			logger.InfoContext(ctx, "memory_recall", "session_id", e.SessionID, "depth", e.Depth)
		},
	}
}

// Combine merges hook sets; each event reaches every non-nil callback in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var turns []func(context.Context, *domain.TurnEvent)
	var pushes, recalls []func(context.Context, *domain.MemoryEvent)
	for _, h := range sets {
		if h.OnTurn != nil {
			turns = append(turns, h.OnTurn)
		}
		if h.OnMemoryPush != nil {
			pushes = append(pushes, h.OnMemoryPush)
		}
		if h.OnMemoryRecall != nil {
			recalls = append(recalls, h.OnMemoryRecall)
		}
	}

	var out domain.LifecycleHooks
	if len(turns) > 0 {
		out.OnTurn = func(ctx context.Context, e *domain.TurnEvent) {
			for _, fn := range turns {
				fn(ctx, e)
			}
		}
	}
	if len(pushes) > 0 {
		out.OnMemoryPush = func(ctx context.Context, e *domain.MemoryEvent) {
			for _, fn := range pushes {
				fn(ctx, e)
			}
		}
	}
	if len(recalls) > 0 {
		out.OnMemoryRecall = func(ctx context.Context, e *domain.MemoryEvent) {
			for _, fn := range recalls {
				fn(ctx, e)
			}
		}
	}
	return out
}
