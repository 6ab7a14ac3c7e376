package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vidresolve/internal/logging"
	"vidresolve/internal/playerdata"
	"vidresolve/internal/services"
)

var tracer = otel.Tracer("vidresolve/internal/extraction")

// Result is the first document that satisfied its strategy.
type Result struct {
	Document *playerdata.Document
	Strategy string
	Attempts []Attempt
}

// ExhaustedError reports that every strategy failed. It matches
// services.ErrExtractionExhausted and the last strategy's error.
type ExhaustedError struct {
	VideoID  string
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Strategy, a.Outcome))
	}
	msg := fmt.Sprintf("%s: video %s: %s", services.ErrExtractionExhausted, e.VideoID, strings.Join(parts, ", "))
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{services.ErrExtractionExhausted}
	}
	return []error{services.ErrExtractionExhausted, e.Last}
}

// Extractor runs strategies in order until one yields a valid document.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
	observer   Observer
}

// New builds an extractor. Order of strategies is the order they are tried.
func New(logger *slog.Logger, observer Observer, strategies ...Strategy) *Extractor {
	filtered := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Extractor{
		strategies: filtered,
		logger:     logging.NewComponentLogger(logger, "extraction"),
		observer:   observer,
	}
}

// Strategies returns the configured strategy names in order.
func (e *Extractor) Strategies() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Extract tries each strategy for videoID against page. Strategy failures of
// any kind, panics included, move on to the next strategy. Only context
// cancellation stops the search early.
func (e *Extractor) Extract(ctx context.Context, videoID string, page Page) (*Result, error) {
	ctx = services.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("extraction started",
		logging.Any("capabilities", page.Capabilities()),
		logging.Any("strategies", e.Strategies()),
	)

	attempts := make([]Attempt, 0, len(e.strategies))
	var last error
	for _, strategy := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, attempt := e.run(ctx, videoID, page, strategy)
		attempts = append(attempts, attempt)
		if e.observer != nil {
			e.observer.ObserveAttempt(attempt)
		}
		if attempt.Err == nil {
			logger.Info("player response extracted",
				logging.String(logging.FieldStrategy, attempt.Strategy),
				logging.Duration("elapsed", attempt.Duration),
			)
			return &Result{Document: doc, Strategy: attempt.Strategy, Attempts: attempts}, nil
		}
		if errors.Is(attempt.Err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		last = attempt.Err
		level := slog.LevelDebug
		if attempt.Outcome != OutcomeUnavailable {
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "strategy failed",
			logging.String(logging.FieldStrategy, attempt.Strategy),
			logging.String("outcome", string(attempt.Outcome)),
			logging.Error(attempt.Err),
		)
	}

	exhausted := &ExhaustedError{VideoID: videoID, Attempts: attempts, Last: last}
	logging.WarnWithContext(logger, "all extraction strategies failed", "extraction_exhausted",
		logging.Int("attempts", len(attempts)),
		logging.Error(last),
		logging.String(logging.FieldErrorHint, "video may be private, removed, or region locked; check remote endpoint settings"),
		logging.String(logging.FieldImpact, "video metadata unavailable"),
	)
	return nil, exhausted
}

func (e *Extractor) run(ctx context.Context, videoID string, page Page, strategy Strategy) (doc *playerdata.Document, attempt Attempt) {
	name := strategy.Name()
	ctx = services.WithStrategy(ctx, name)
	ctx, span := tracer.Start(ctx, "extraction."+name,
		trace.WithAttributes(
			attribute.String("video.id", videoID),
			attribute.String("extraction.strategy", name),
		))
	start := time.Now()
	attempt = Attempt{VideoID: videoID, Strategy: name}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			attempt.Err = services.Wrap(services.ErrStrategyInvalidResult, name, "", "strategy panicked", fmt.Errorf("%v", r))
		}
		attempt.Duration = time.Since(start)
		attempt.Outcome = classify(attempt.Err)
		span.SetAttributes(attribute.String("extraction.outcome", string(attempt.Outcome)))
		if attempt.Err != nil {
			span.SetStatus(codes.Error, attempt.Err.Error())
		}
		span.End()
	}()

	doc, attempt.Err = strategy.Extract(ctx, videoID, page)
	if attempt.Err == nil && doc == nil {
		attempt.Err = invalid(name, "strategy returned no document", nil)
	}
	return doc, attempt
}
