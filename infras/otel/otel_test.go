package otel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"

	"cnpgdemo/config"
	"cnpgdemo/infras/otel"
)

func TestNew_WithoutEndpoint(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "items"

	ot, cleanup, err := otel.New(cfg)
	require.NoError(t, err)
	defer cleanup()

	ctx, scope := ot.NewScope(context.Background(), "test", "test.span")
	defer scope.End()

	span := oteltrace.SpanFromContext(ctx)
	assert.True(t, span.SpanContext().IsValid())

	scope.SetAttributes(map[string]any{
		"bool":   true,
		"int":    1,
		"string": "s",
		"slice":  []string{"a"},
		"other":  1.5,
	})
	scope.AddEvent("event")
	scope.TraceIfError(nil)
	scope.TraceIfError(errors.New("boom"))
}
