package logging_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/pkg/logging"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithSource(ctx, "gitlab")
	ctx = logging.WithProject(ctx, "inkscape")

	logging.FromContext(ctx).Info().Msg("reconciled")

	tl.AssertContains(t, `"run_id":"run-1"`)
	tl.AssertContains(t, `"source":"gitlab"`)
	tl.AssertContains(t, `"project":"inkscape"`)
	assert.Equal(t, "run-1", logging.RunID(ctx))
	assert.Len(t, tl.Lines(), 1)
}

func TestNewRunID(t *testing.T) {
	id := logging.NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, logging.NewRunID())
	assert.Empty(t, logging.RunID(context.Background()))
}
