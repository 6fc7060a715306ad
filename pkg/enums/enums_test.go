package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputKind(t *testing.T) {
	kind, err := ParseInputKind(" Color ")
	require.NoError(t, err)
	assert.Equal(t, InputKindColor, kind)

	kind, err = ParseInputKind("")
	require.NoError(t, err)
	assert.Equal(t, InputKindSelect, kind)

	_, err = ParseInputKind("slider")
	assert.Error(t, err)
	assert.False(t, InputKind("slider").IsValid())
}

func TestParseMovementKind(t *testing.T) {
	kind, err := ParseMovementKind("commit")
	require.NoError(t, err)
	assert.Equal(t, MovementKindCommit, kind)
	assert.True(t, kind.IsValid())

	_, err = ParseMovementKind("transfer")
	assert.Error(t, err)
}
