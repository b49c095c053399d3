package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListCodec(t *testing.T) {
	raw, err := EncodeIDList(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = EncodeIDList([]int64{1, 22, 333})
	require.NoError(t, err)
	ids, err := DecodeIDList(raw)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 22, 333}, ids)

	// Column defaults and legacy empties both read as empty, not nil.
	ids, err = DecodeIDList("")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	_, err = DecodeIDList("{not json")
	require.Error(t, err)
}

func TestStringListCodec(t *testing.T) {
	raw, err := EncodeStringList(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = EncodeStringList([]string{"tag", "todo"})
	require.NoError(t, err)
	vals, err := DecodeStringList(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"tag", "todo"}, vals)
}
