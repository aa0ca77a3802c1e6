package config

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyrv/pkg/source"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "./asm", c.Source)
	assert.Equal(t, "compiled.txt", c.Output)
	assert.Equal(t, "debugger_info.txt", c.Debug)
	assert.Equal(t, "breakpoint_info.txt", c.Breakpoints)
	assert.Equal(t, "_start", c.Entry.Label)
	assert.Equal(t, source.EntryAuto, c.Entry.Policy)
	assert.Equal(t, "#breakpoint", c.Marker)
	assert.Equal(t, []string{"Makefile"}, c.Exclude)
	assert.False(t, c.Strict)
	assert.NoError(t, c.Validate())

	c.Exclude[0] = "changed"
	assert.Equal(t, "Makefile", source.DefaultExclude[0])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c Config)
	}{
		{
			name:  "Empty",
			input: "",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name: "Overrides",
			input: `
source: src
output: out/prog.txt
strict: true
entry:
  label: main
  policy: always
`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "src", c.Source)
				assert.Equal(t, "out/prog.txt", c.Output)
				assert.True(t, c.Strict)
				assert.Equal(t, "main", c.Entry.Label)
				assert.Equal(t, source.EntryAlways, c.Entry.Policy)

				assert.Equal(t, "debugger_info.txt", c.Debug)
			},
		},
		{
			name:  "Never",
			input: "entry: {policy: never}\n",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, source.EntryNever, c.Entry.Policy)
				assert.Equal(t, "_start", c.Entry.Label)
			},
		},
		{
			name:  "Exclude",
			input: "exclude: [Makefile, README]\nmacro_depth: 4\n",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, []string{"Makefile", "README"}, c.Exclude)
				assert.Equal(t, 4, c.MacroDepth)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"UnknownKey", "sources: x\n"},
		{"BadPolicy", "entry: {policy: sometimes}\n"},
		{"EmptyOutput", "output: ''\n"},
		{"EmptyMarker", "breakpoint_marker: ''\n"},
		{"ZeroDepth", "macro_depth: 0\n"},
		{"NotYAML", "source: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"tinyrv.yaml": {Data: []byte("source: programs\n")},
		"bad.yaml":    {Data: []byte("nope: 1\n")},
	}

	c, err := Load(fsys, "tinyrv.yaml")
	require.NoError(t, err)
	assert.Equal(t, "programs", c.Source)

	_, err = Load(fsys, "bad.yaml")
	assert.ErrorContains(t, err, "bad.yaml")

	_, err = Load(fsys, "missing.yaml")
	assert.Error(t, err)

	c, err = LoadDefault(fsys)
	require.NoError(t, err)
	assert.Equal(t, "programs", c.Source)

	c, err = LoadDefault(fstest.MapFS{})
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Entry.Policy = source.EntryNever
	c.Strict = true

	data, err := c.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "policy: never")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
