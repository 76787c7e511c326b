package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseSequence(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "cycle.lock"))

	require.NoError(t, l.Acquire())
	err := l.Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another cycle")

	require.NoError(t, l.Release())
	assert.NoError(t, l.Acquire())
	assert.NoError(t, l.Release())
}

func TestReleaseWithoutAcquire(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "cycle.lock"))
	assert.NoError(t, l.Release())
}
