package health_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/booklend/rental-service/internal/health"
)

func Test_State_Lifecycle(t *testing.T) {
	state := health.NewState()

	assert.False(t, state.Ready(), "zero value reports not ready")
	assert.False(t, state.ShuttingDown())

	state.SetReady()
	assert.True(t, state.Ready())

	state.SetShuttingDown()
	assert.False(t, state.Ready(), "draining reports not ready")
	assert.True(t, state.ShuttingDown())

	state.SetReady()
	assert.True(t, state.Ready(), "readiness can be re-established")
	assert.False(t, state.ShuttingDown())
}
