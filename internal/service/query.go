package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/metrics"
	"github.com/dtroode/confreg-server/internal/model"
)

// Query computes dashboard statistics and registration listings.
type Query struct {
	store   model.RegistrationStore
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *logger.Logger
}

func NewQuery(store model.RegistrationStore, metrics *metrics.Metrics, tracer trace.Tracer, logger *logger.Logger) *Query {
	return &Query{
		store:   store,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger.With("component", "query_service"),
	}
}

// Stats returns the total, student and professional counts.
// The counts are three independent reads and may disagree under concurrent inserts.
func (s *Query) Stats(ctx context.Context) (model.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Stats")
	defer span.End()

	var stats model.Stats
	var err error

	stats.Total, err = s.count(ctx, model.TypeFilterAll)
	if err != nil {
		return model.Stats{}, s.fail(span, "stats", err)
	}
	stats.Students, err = s.count(ctx, model.FilterFor(model.RegistrationTypeStudent))
	if err != nil {
		return model.Stats{}, s.fail(span, "stats", err)
	}
	stats.Professionals, err = s.count(ctx, model.FilterFor(model.RegistrationTypeProfessional))
	if err != nil {
		return model.Stats{}, s.fail(span, "stats", err)
	}

	return stats, nil
}

// List returns registrations matching rawType ordered by rawSort.
// Unknown values fall back to all types and newest first.
func (s *Query) List(ctx context.Context, rawType, rawSort string) ([]model.Registration, error) {
	q := model.ListQuery{
		Type: model.ParseTypeFilter(rawType),
		Sort: model.ParseSortOrder(rawSort),
	}

	ctx, span := s.tracer.Start(ctx, "QueryService.List", trace.WithAttributes(
		attribute.String("filter.type", string(q.Type)),
		attribute.String("filter.sort", string(q.Sort)),
	))
	defer span.End()

	registrations, err := s.store.List(ctx, q)
	if err != nil {
		return nil, s.fail(span, "list", fmt.Errorf("failed to list registrations: %w", err))
	}

	span.SetAttributes(attribute.Int("result.count", len(registrations)))
	return registrations, nil
}

func (s *Query) count(ctx context.Context, filter model.TypeFilter) (int64, error) {
	n, err := s.store.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s registrations: %w", filter, err)
	}
	return n, nil
}

func (s *Query) fail(span trace.Span, op string, err error) error {
	s.logger.Error("store failure", "operation", op, "error", err)
	s.metrics.IncrementStoreFailure(op)
	span.RecordError(err)
	span.SetStatus(codes.Error, "store failure")
	return err
}
