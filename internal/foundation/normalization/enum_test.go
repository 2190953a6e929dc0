package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	red   color = "red"
	green color = "green"
)

func colors() *Enum[color] {
	return NewEnum(map[string]color{
		"red":   red,
		"RED":   red,
		"green": green,
		"verde": green,
	}, red)
}

func TestEnumNormalize(t *testing.T) {
	e := colors()
	tests := []struct {
		in   string
		want color
	}{
		{"red", red},
		{"  Green ", green},
		{"VERDE", green},
		{"blue", red},
		{"", red},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Normalize(tt.in))
		})
	}
}

func TestEnumParse(t *testing.T) {
	e := colors()

	v, err := e.Parse(" Verde")
	require.NoError(t, err)
	assert.Equal(t, green, v)

	_, err = e.Parse("blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"blue"`)
	assert.Contains(t, err.Error(), "green, red, verde")
}

func TestEnumValidAndKeys(t *testing.T) {
	e := colors()
	assert.True(t, e.Valid(green))
	assert.False(t, e.Valid(color("blue")))
	assert.Equal(t, []string{"green", "red", "verde"}, e.Keys())

	keys := e.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "green", e.Keys()[0])
}

func TestEnumWithCustomFold(t *testing.T) {
	e := NewEnumWith(map[string]color{"red": red}, green, func(s string) string { return s })
	assert.Equal(t, red, e.Normalize("red"))
	assert.Equal(t, green, e.Normalize("RED"))
}
