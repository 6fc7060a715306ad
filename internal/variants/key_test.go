package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalKeyIsOrderIndependent(t *testing.T) {
	a := CanonicalKey([]Selection{{AttributeID: 2, ValueID: 21}, {AttributeID: 1, ValueID: 10}})
	b := CanonicalKey([]Selection{{AttributeID: 1, ValueID: 10}, {AttributeID: 2, ValueID: 21}})
	assert.Equal(t, "1:10|2:21", a)
	assert.Equal(t, a, b)
}

func TestCanonicalKeyEmptySelection(t *testing.T) {
	assert.Equal(t, "", CanonicalKey(nil))
	assert.Equal(t, "", CanonicalKey([]Selection{}))
}

func TestCanonicalKeySortsNumerically(t *testing.T) {
	assert.Equal(t, "2:5|10:1", CanonicalKey([]Selection{{AttributeID: 10, ValueID: 1}, {AttributeID: 2, ValueID: 5}}))
}

func TestCanonicalKeyDoesNotMutateInput(t *testing.T) {
	in := []Selection{{AttributeID: 3, ValueID: 1}, {AttributeID: 1, ValueID: 2}}
	_ = CanonicalKey(in)
	assert.Equal(t, uint64(3), in[0].AttributeID)
}

func TestParseKey(t *testing.T) {
	sel, err := ParseKey("1:10|2:21")
	require.NoError(t, err)
	assert.Equal(t, []Selection{{AttributeID: 1, ValueID: 10}, {AttributeID: 2, ValueID: 21}}, sel)
	assert.Equal(t, "1:10|2:21", CanonicalKey(sel))

	sel, err = ParseKey("")
	require.NoError(t, err)
	assert.Empty(t, sel)

	for _, bad := range []string{"1", "1:x", "a:1", "1:2|"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}
