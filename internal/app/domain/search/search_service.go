package search

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/observability/metrics"
)

// MaxResults caps every search, primary and fallback alike.
const MaxResults = 50

var _ Service = (*ServiceImpl)(nil)

// Service turns a raw query into a filter set for the session state.
type Service interface {
	// Search runs the degradation ladder. filterActive is false only for an
	// empty (or whitespace) query: that clears the filter rather than
	// filtering to nothing.
	Search(ctx context.Context, query string) (results []models.SearchResult, filterActive bool, err error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	provider Provider
}

func NewService(provider Provider, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
	}
}

func (s *ServiceImpl) Search(ctx context.Context, query string) ([]models.SearchResult, bool, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, false, nil
	}

	tracer := otel.Tracer("search")
	ctx, span := tracer.Start(ctx, "Search")
	span.SetAttributes(attribute.Int("search.max_results", MaxResults))
	defer span.End()

	start := time.Now()
	m := metrics.Get()
	m.SearchRequestsTotal.Add(ctx, 1)
	defer func() {
		m.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	results, err := s.provider.RankedSearch(ctx, trimmed, MaxResults)
	if err == nil {
		span.SetAttributes(attribute.Int("search.results", len(results)))
		return results, true, nil
	}

	// Provider failed; degrade to the substring match. The fallback yields
	// the same result shape, just without ranking or highlights.
	s.logger.Warn("ranked search failed, falling back to substring match",
		zap.String("query", trimmed), zap.Error(err))
	span.RecordError(err)
	m.SearchFallbacksTotal.Add(ctx, 1)

	results, err = s.provider.SubstringSearch(ctx, trimmed, MaxResults)
	if err != nil {
		s.logger.Error("substring search failed", zap.String("query", trimmed), zap.Error(err))
		span.SetStatus(codes.Error, "search failed")
		return nil, true, err
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results, true, nil
}
