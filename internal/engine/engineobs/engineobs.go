package engineobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"dcabot/internal/engine"
	"dcabot/internal/logger"
	"dcabot/internal/report"
	"dcabot/internal/trace"
)

type observableEngine struct {
	engine engine.Runner
}

var _ engine.Runner = (*observableEngine)(nil)

func Wrap(eng engine.Runner) engine.Runner {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Run(ctx context.Context) *engine.Result {
	ctx, span := trace.StartSpan(ctx, "engine.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting DCA run")

	result := oe.engine.Run(ctx)

	span.SetAttributes(
		attribute.String("run_id", result.RunID),
		attribute.String("status", string(result.Status)),
	)

	if result.Err != nil {
		span.SetStatus(codes.Error, result.Err.Error())
		logger.ErrorWithErrSkip(ctx, 1, "DCA run failed", result.Err,
			"run_id", result.RunID,
			"kind", string(result.Err.Kind),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return result
	}

	fields := []any{
		"run_id", result.RunID,
		"status", string(result.Status),
		"warnings", len(result.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if result.Status == report.StatusSuccess && result.Entry != nil {
		fields = append(fields, "spend", result.Entry.Spend.String(), "quantity", result.Entry.Quantity.String())
	}
	logger.InfoSkip(ctx, 1, "DCA run completed", fields...)

	return result
}
