package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONObjectValueAndScan(t *testing.T) {
	obj := JSONObject{"hex": "#FF0000"}
	raw, err := obj.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"hex":"#FF0000"}`, raw)

	var scanned JSONObject
	require.NoError(t, scanned.Scan([]byte(`{"hex":"#00FF00"}`)))
	assert.Equal(t, "#00FF00", scanned.String("hex"))
	assert.Equal(t, "", scanned.String("missing"))

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestNilJSONObjectEncodesEmpty(t *testing.T) {
	var obj JSONObject
	raw, err := obj.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)
}

func TestAttributeSnapshotRoundTripAndByName(t *testing.T) {
	snap := AttributeSnapshot{
		{AttributeID: 1, AttributeCode: "color", AttributeName: "Color", ValueID: 10, Value: "Rojo"},
		{AttributeID: 2, AttributeCode: "talla", AttributeName: "Talla", ValueID: 21, Value: "M"},
	}
	raw, err := snap.Value()
	require.NoError(t, err)

	var scanned AttributeSnapshot
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, snap, scanned)
	assert.Equal(t, map[string]string{"Color": "Rojo", "Talla": "M"}, scanned.ByName())

	require.NoError(t, scanned.Scan(""))
	assert.Empty(t, scanned)
}
