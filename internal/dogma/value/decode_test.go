package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_Binding(t *testing.T) {
	v, err := Decode(FormatJSON, []byte(`{"nr": 18, "name": "bob", "tags": [1, "x", null, true]}`))
	require.NoError(t, err)
	fields, ok := v.AsObject()
	require.True(t, ok)
	require.Len(t, fields, 3)

	nr, ok := fields[0].Value.AsInt()
	require.True(t, ok)
	assert.EqualValues(t, 18, nr)
}

func TestDecodeJSON_DuplicateKeyRejected(t *testing.T) {
	_, err := Decode(FormatJSON, []byte(`{"a": 1, "a": 2}`))
	assert.Error(t, err)
}

func TestDecodeJSON_IntegerAtMaxInt64(t *testing.T) {
	v, err := Decode(FormatJSON, []byte(`9223372036854775807`))
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	assert.EqualValues(t, 9223372036854775807, i)
}

func TestDecodeYAML_Basic(t *testing.T) {
	v, err := Decode(FormatYAML, []byte("age: 21\nname: jim\n"))
	require.NoError(t, err)
	age, ok := v.Field("age")
	require.True(t, ok)
	i, _ := age.AsInt()
	assert.EqualValues(t, 21, i)
}

func TestDecodeYAML_LargeDecimalNotBounded(t *testing.T) {
	v, err := Decode(FormatYAML, []byte("val: 1e300\n"))
	require.NoError(t, err)
	val, ok := v.Field("val")
	require.True(t, ok)
	d, ok := val.AsDecimal()
	require.True(t, ok)
	assert.Equal(t, 1e300, d)
}

func TestDecodeTOML_Basic(t *testing.T) {
	v, err := Decode(FormatTOML, []byte("age = 21\nname = \"jim\"\n"))
	require.NoError(t, err)
	age, ok := v.Field("age")
	require.True(t, ok)
	i, _ := age.AsInt()
	assert.EqualValues(t, 21, i)
}
