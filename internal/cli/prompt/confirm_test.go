package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmWithForceSkipsPrompt(t *testing.T) {
	// force bypasses the terminal entirely, so this is safe to run headless.
	ok, err := ConfirmWithForce("Clear credentials?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}
