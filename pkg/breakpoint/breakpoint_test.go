package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyrv/pkg/source"
)

func TestExtract(t *testing.T) {
	buf := source.Buffer{
		"_start:",
		"  li a0, 1 #breakpoint",
		"  li a1, 2",
		"#breakpoint",
		"  ecall ; #breakpoint here too",
		"  # breakpoint (spaced, not a marker)",
	}

	got := Extract(buf, "")
	assert.Equal(t, []int{2, 4, 5}, got)
	assert.Equal(t, "2 4 5", Format(got))

	assert.Equal(t, []int{3}, Extract(buf, "a1"))
	assert.Nil(t, Extract(source.Buffer{"nop"}, DefaultMarker))
	assert.Equal(t, "", Format(nil))
}

func TestParse(t *testing.T) {
	got, err := Parse(" 2 4\n5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, got)

	_, err = Parse("2 x")
	assert.Error(t, err)
}
