// Package config loads the refinement configuration: code prefix, ontology
// root, standard booleans, ethnicity table, per-questionnaire exclusion
// filters and the ordered list of generated enumeration specifications.
//
// TOML is the primary format; YAML is accepted for .yaml/.yml files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RecentTimeMarker names the enumeration specification that selects the
// two-level time-bucket generator.
const RecentTimeMarker = "RECENT_TIME"

// AgeSpec names the enumeration specification consulted for entity age
// variables.
const AgeSpec = "AGE"

// ErrInvalid wraps every configuration parse or validation failure.
var ErrInvalid = errors.New("invalid configuration")

var defaultPathOmit = []string{"Participants", "Admin"}

var validate = validator.New()

// Config is the decoded configuration document.
type Config struct {
	CodePrefix       string        `toml:"code_prefix" yaml:"code_prefix" validate:"required"`
	OntologyRoot     string        `toml:"ontology_root" yaml:"ontology_root" validate:"required"`
	UserProcedure    string        `toml:"user_procedure" yaml:"user_procedure"`
	PathOmit         []string      `toml:"path_omit" yaml:"path_omit"`
	StandardBooleans []string      `toml:"standard_booleans" yaml:"standard_booleans" validate:"required,min=1,dive,required"`
	Ethnicity        Ethnicity     `toml:"ethnicity" yaml:"ethnicity"`
	Filters          []Filter      `toml:"filters" yaml:"filters" validate:"dive"`
	Enumerations     []Enumeration `toml:"enumerations" yaml:"enumerations" validate:"dive"`

	filters map[string]*Filter
}

// Ethnicity names the ethnicity variable and its ordered code table.
type Ethnicity struct {
	Variable string       `toml:"variable" yaml:"variable"`
	Codes    []EthnicCode `toml:"codes" yaml:"codes" validate:"dive"`
}

// EthnicCode is one row of the ethnicity table. Value is appended to the
// enumeration root code.
type EthnicCode struct {
	Name        string `toml:"name" yaml:"name" validate:"required"`
	Description string `toml:"description" yaml:"description"`
	Value       string `toml:"value" yaml:"value" validate:"required"`
}

// Filter excludes paths of one questionnaire. A filter without Exclude
// entries drops the whole questionnaire.
type Filter struct {
	Questionnaire string    `toml:"questionnaire" yaml:"questionnaire" validate:"required"`
	AlternateName string    `toml:"alternate_name" yaml:"alternate_name"`
	Exclude       []Exclude `toml:"exclude" yaml:"exclude" validate:"dive"`
}

// Exclude is a path segment below the questionnaire, optionally narrowed by
// hint sub-segments.
type Exclude struct {
	Name  string   `toml:"name" yaml:"name" validate:"required"`
	Hints []string `toml:"hints" yaml:"hints"`
}

// Enumeration describes one generated enumeration. Either a numeric range
// (First/Last, optional Group) or the RecentTimeMarker name selects the
// generator.
type Enumeration struct {
	Name     string   `toml:"name" yaml:"name" validate:"required"`
	Hints    []string `toml:"hints" yaml:"hints"`
	Excludes []string `toml:"excludes" yaml:"excludes"`
	First    *int     `toml:"first" yaml:"first" validate:"omitempty,gte=0"`
	Last     *int     `toml:"last" yaml:"last" validate:"omitempty,gte=0"`
	Group    int      `toml:"group" yaml:"group" validate:"gte=0"`
}

// HasRange reports whether both range bounds are set.
func (e Enumeration) HasRange() bool { return e.First != nil && e.Last != nil }

// Grouped reports whether the range is partitioned into buckets.
func (e Enumeration) Grouped() bool { return e.HasRange() && e.Group > 0 }

// IsRecentTime reports whether e selects the time-bucket generator.
func (e Enumeration) IsRecentTime() bool { return e.Name == RecentTimeMarker }

// Load reads the configuration at path. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := "toml"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document in the given format
// ("toml" or "yaml").
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	pathOmitSet := false
	switch format {
	case "toml":
		meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse TOML: %w", ErrInvalid, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
		}
		pathOmitSet = meta.IsDefined("path_omit")
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalid, err)
		}
		pathOmitSet = cfg.PathOmit != nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalid, format)
	}
	if !pathOmitSet {
		cfg.PathOmit = append([]string(nil), defaultPathOmit...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.index()
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	seen := make(map[string]struct{}, len(c.Enumerations))
	for _, e := range c.Enumerations {
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: duplicate enumeration %q", ErrInvalid, e.Name)
		}
		seen[e.Name] = struct{}{}
		if (e.First == nil) != (e.Last == nil) {
			return fmt.Errorf("%w: enumeration %q needs both first and last", ErrInvalid, e.Name)
		}
		if e.HasRange() && *e.First > *e.Last {
			return fmt.Errorf("%w: enumeration %q has first %d > last %d", ErrInvalid, e.Name, *e.First, *e.Last)
		}
		if e.Group > 0 && !e.HasRange() {
			return fmt.Errorf("%w: enumeration %q has a group size but no range", ErrInvalid, e.Name)
		}
	}
	if len(c.Ethnicity.Codes) > 0 && strings.TrimSpace(c.Ethnicity.Variable) == "" {
		return fmt.Errorf("%w: ethnicity codes given without a variable name", ErrInvalid)
	}
	return nil
}

func (c *Config) index() {
	c.filters = make(map[string]*Filter, len(c.Filters)*2)
	for i := range c.Filters {
		f := &c.Filters[i]
		c.filters[f.Questionnaire] = f
		// Some questionnaires go by an internal and an external name
		// (Participants vs Participant).
		if f.AlternateName != "" {
			c.filters[f.AlternateName] = f
		}
	}
}

// FilterFor returns the filter registered under a primary or alternate
// questionnaire name.
func (c *Config) FilterFor(name string) (*Filter, bool) {
	if c == nil {
		return nil, false
	}
	if c.filters == nil {
		c.index()
	}
	f, ok := c.filters[name]
	return f, ok
}

// Enumeration returns the specification with the given name.
func (c *Config) Enumeration(name string) (Enumeration, bool) {
	for _, e := range c.Enumerations {
		if e.Name == name {
			return e, true
		}
	}
	return Enumeration{}, false
}

// IsStandardBoolean matches name case-insensitively against the standard
// boolean values (Y, N, PNA, DK, ...).
func (c *Config) IsStandardBoolean(name string) bool {
	for _, b := range c.StandardBooleans {
		if strings.EqualFold(name, b) {
			return true
		}
	}
	return false
}
