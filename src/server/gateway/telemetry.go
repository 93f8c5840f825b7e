package gateway

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

var (
	cacheLookups     metric.Int64Counter
	cacheWriteErrors metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/portfolio-api/server/src/server/gateway")

	var err error
	cacheLookups, err = meter.Int64Counter(
		"portfolio.cache.lookups",
		metric.WithDescription("Cache lookups by dataset and result (hit, miss, error)"),
	)
	if err != nil {
		log.Fatalf("failed to create portfolio.cache.lookups counter: %v", err)
	}

	cacheWriteErrors, err = meter.Int64Counter(
		"portfolio.cache.write_errors",
		metric.WithDescription("Failed cache writes after a repository load"),
	)
	if err != nil {
		log.Fatalf("failed to create portfolio.cache.write_errors counter: %v", err)
	}
}

func recordLookup(ctx context.Context, dataset, result string) {
	cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("result", result),
	))
}

func recordWriteError(ctx context.Context, dataset string) {
	cacheWriteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("dataset", dataset)))
}
