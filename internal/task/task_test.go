package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTerminal(t *testing.T) {
	assert.False(t, Running.Terminal())
	assert.True(t, Completed.Terminal())
	assert.True(t, Failed.Terminal())
}

func TestStatusSucceeded(t *testing.T) {
	zero, one := 0, 1
	assert.True(t, Status{State: Completed, ExitCode: &zero}.Succeeded())
	assert.False(t, Status{State: Completed, ExitCode: &one}.Succeeded())
	assert.False(t, Status{State: Failed, ExitCode: &zero}.Succeeded())
	assert.False(t, Status{State: Running}.Succeeded())
}
