package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Run("Sessions get distinct run ids", func(t *testing.T) {
		first := NewSession()
		second := NewSession()

		assert.NotEqual(t, first.RunID, second.RunID)
		assert.NotNil(t, first.Failed)
	})
}

func TestSessionRecords(t *testing.T) {
	session := NewSession()

	session.RecordProcessed(1)
	session.RecordProcessed(2)
	session.RecordSkipped(3)
	session.RecordFailure(4, errors.New("extraction refused"))

	assert.Equal(t, []int64{1, 2}, session.Processed)
	assert.Equal(t, []int64{3}, session.Skipped)
	require.Len(t, session.Failed, 1)
	assert.EqualError(t, session.Failed[4], "extraction refused")
}
