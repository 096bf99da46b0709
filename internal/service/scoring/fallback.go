package scoring

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/pkg/logger"
	"github.com/yourusername/quiz-engine/pkg/monitoring"
	"github.com/yourusername/quiz-engine/pkg/tracing"
)

// Метки стратегии для метрики quiz_scoring_runs_total
const (
	StrategyRemote   = "remote"
	StrategyLocal    = "local"
	StrategyFallback = "fallback"
)

// FallbackScorer сначала пробует удаленный подсчет, при ошибке считает локально.
// Ошибка удаленного подсчета наружу не выходит.
type FallbackScorer struct {
	remote Scorer
	local  Scorer
	config Config
	log    *zap.Logger
}

// NewFallbackScorer создает подсчет с откатом на локальный
func NewFallbackScorer(remote, local Scorer, config Config) *FallbackScorer {
	return &FallbackScorer{
		remote: remote,
		local:  local,
		config: config,
		log:    logger.Component("Scoring"),
	}
}

// Score считает результат попытки
func (s *FallbackScorer) Score(ctx context.Context, attempt *entity.QuizAttempt) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "scoring.Score")
	defer span.End()
	span.SetAttributes(attribute.Int64("attempt.id", int64(attempt.ID)))

	if s.config.RemoteEnabled && s.remote != nil {
		res, err := s.remote.Score(ctx, attempt)
		if err == nil {
			monitoring.ScoringRuns.WithLabelValues(StrategyRemote).Inc()
			span.SetAttributes(attribute.String("scoring.strategy", StrategyRemote))
			return res, nil
		}
		s.log.Warn("remote scoring failed, falling back to local",
			zap.Uint("attempt_id", attempt.ID), zap.Error(err))
		monitoring.ScoringRuns.WithLabelValues(StrategyFallback).Inc()
		span.AddEvent("remote scoring failed")
	}

	res, err := s.local.Score(ctx, attempt)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	monitoring.ScoringRuns.WithLabelValues(StrategyLocal).Inc()
	span.SetAttributes(attribute.String("scoring.strategy", StrategyLocal))
	return res, nil
}
