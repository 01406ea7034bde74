package entities_test

import (
	"testing"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	c := entities.NewContract("log",
		entities.KindNumber, entities.KindNumber, entities.KindString, entities.KindBuffer, entities.KindFunction)

	t.Run("all positions required", func(t *testing.T) {
		assert.Equal(t, 5, c.MinArity)
		assert.Equal(t, "log(number, number, string, buffer, function)", c.String())
	})

	t.Run("optional trailing positions", func(t *testing.T) {
		opt := c.Optional(3)
		assert.Equal(t, 3, opt.MinArity)
		assert.Equal(t, 5, c.MinArity, "Optional returns a copy")
		assert.Equal(t, "log(number, number, string, buffer?, function?)", opt.String())
	})

	t.Run("expected kinds", func(t *testing.T) {
		k, ok := c.Expected(2)
		assert.True(t, ok)
		assert.Equal(t, entities.KindString, k)

		_, ok = c.Expected(5)
		assert.False(t, ok)
		_, ok = c.Expected(-1)
		assert.False(t, ok)
	})

	t.Run("checked positions", func(t *testing.T) {
		assert.Equal(t, 2, c.CheckedPositions(2))
		assert.Equal(t, 5, c.CheckedPositions(9))
	})

	t.Run("callback positions", func(t *testing.T) {
		assert.Equal(t, []int{4}, c.CallbackPositions())
		assert.Empty(t, entities.NewContract("add", entities.KindNumber).CallbackPositions())
	})
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want entities.Kind
	}{
		{name: "null", in: "null", want: entities.KindNull},
		{name: "number", in: "number", want: entities.KindNumber},
		{name: "case insensitive", in: "Buffer", want: entities.KindBuffer},
		{name: "function", in: "function", want: entities.KindFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := entities.ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
			assert.True(t, k.Valid())
		})
	}

	_, err := entities.ParseKind("symbol")
	assert.ErrorContains(t, err, `unknown value kind "symbol"`)

	invalid := entities.Kind(42)
	assert.False(t, invalid.Valid())
	assert.Equal(t, "kind(42)", invalid.String())
	_, err = invalid.MarshalText()
	assert.Error(t, err)

	var k entities.Kind
	require.NoError(t, k.UnmarshalText([]byte("string")))
	assert.Equal(t, entities.KindString, k)
}
