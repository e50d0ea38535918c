package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, debug := range []bool{false, true} {
		log, err := New(debug)
		require.NoError(t, err)
		assert.Equal(t, debug, log.Core().Enabled(-1))
	}
	assert.NotNil(t, OrNop(nil))
}
