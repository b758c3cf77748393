package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual_IntegerVsDecimalNeverEqual(t *testing.T) {
	assert.False(t, Equal(Int(1), Decimal(1.0)))
	assert.True(t, Equal(Int(1), Int(1)))
	assert.True(t, Equal(Decimal(1.0), Decimal(1.0)))
}

func TestEqual_NaNNeverEqualsNaN(t *testing.T) {
	nan := Decimal(math.NaN())
	assert.False(t, Equal(nan, nan))
}

func TestObjectFieldOrderPreserved(t *testing.T) {
	obj := Object([]Field{{Name: "b", Value: Int(2)}, {Name: "a", Value: Int(1)}})
	fields, ok := obj.AsObject()
	assert.True(t, ok)
	assert.Equal(t, "b", fields[0].Name)
	assert.Equal(t, "a", fields[1].Name)
}

func TestWithFieldPreservesPositionOnUpdate(t *testing.T) {
	obj := Object([]Field{{Name: "a", Value: Int(1)}, {Name: "b", Value: Int(2)}})
	updated := obj.WithField("a", Int(99))
	fields, _ := updated.AsObject()
	assert.Equal(t, "a", fields[0].Name)
	v, _ := fields[0].Value.AsInt()
	assert.EqualValues(t, 99, v)
}

func TestWithFieldAppendsNewField(t *testing.T) {
	obj := Object(nil)
	updated := obj.WithField("x", Str("y"))
	fields, _ := updated.AsObject()
	assert.Len(t, fields, 1)
	assert.Equal(t, "x", fields[0].Name)
}

func TestEqual_ListsElementwise(t *testing.T) {
	a := List([]V{Int(1), Str("x")})
	b := List([]V{Int(1), Str("x")})
	c := List([]V{Int(1), Str("y")})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
