package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repocat/apps/repocat/internal/platform/telemetry"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	tel, err := telemetry.New(context.Background(), false)

	require.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
