// Package config loads the optional tinyrv.yaml build file.
package config

import (
	"bytes"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"tinyrv/pkg/breakpoint"
	"tinyrv/pkg/macro"
	"tinyrv/pkg/source"
)

// DefaultFile is looked up in the working directory.
const DefaultFile = "tinyrv.yaml"

type (
	Config struct {
		// Source is the directory holding the assembly files.
		Source  string   `yaml:"source"`
		Exclude []string `yaml:"exclude"`

		Output      string `yaml:"output"`
		Debug       string `yaml:"debug"`
		Breakpoints string `yaml:"breakpoints"`

		Entry Entry `yaml:"entry"`

		Marker     string `yaml:"breakpoint_marker"`
		MacroDepth int    `yaml:"macro_depth"`

		// Strict fails the build on any diagnostic.
		Strict bool `yaml:"strict"`
	}

	Entry struct {
		Label  string             `yaml:"label"`
		Policy source.EntryPolicy `yaml:"policy"`
	}
)

// Default returns the layout the simulator expects without any config file.
func Default() Config {
	return Config{
		Source:      "./asm",
		Exclude:     append([]string(nil), source.DefaultExclude...),
		Output:      "compiled.txt",
		Debug:       "debugger_info.txt",
		Breakpoints: "breakpoint_info.txt",
		Entry: Entry{
			Label:  source.DefaultEntryLabel,
			Policy: source.EntryAuto,
		},
		Marker:     breakpoint.DefaultMarker,
		MacroDepth: macro.DefaultMaxDepth,
	}
}

// Parse decodes data over the defaults. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	c := Default()

	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)

	err := d.Decode(&c)
	if err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode")
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Load reads and parses name from fsys.
func Load(fsys fs.FS, name string) (Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(err, "%v", name)
	}

	return c, nil
}

// LoadDefault loads DefaultFile if it exists and returns Default otherwise.
func LoadDefault(fsys fs.FS) (Config, error) {
	c, err := Load(fsys, DefaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return c, err
}

func (c Config) Validate() error {
	switch {
	case c.Source == "":
		return errors.New("source directory is empty")
	case c.Output == "":
		return errors.New("output path is empty")
	case c.Marker == "":
		return errors.New("breakpoint marker is empty")
	case c.MacroDepth <= 0:
		return errors.New("macro depth must be positive, got %d", c.MacroDepth)
	}

	return nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}

	return data, nil
}
