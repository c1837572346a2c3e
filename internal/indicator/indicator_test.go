package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Open_DisabledWithoutChip(t *testing.T) {
	ind, err := Open("", 0)
	require.NoError(t, err)
	assert.Nil(t, ind.line)

	// Set/Close on a disabled indicator must never panic or error.
	ind.Set(true)
	ind.Set(false)
	assert.NoError(t, ind.Close())
}
