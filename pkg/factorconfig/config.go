package factorconfig

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/c9s/xfactor/pkg/holder"
)

type Config struct {
	Input   InputConfig  `json:"input" yaml:"input"`
	Output  OutputConfig `json:"output" yaml:"output"`
	Factors []Factor     `json:"factors" yaml:"factors"`
}

type InputConfig struct {
	File           string `json:"file" yaml:"file"`
	TimeColumn     string `json:"timeColumn,omitempty" yaml:"timeColumn,omitempty"`
	CategoryColumn string `json:"categoryColumn,omitempty" yaml:"categoryColumn,omitempty"`
}

type OutputConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Format is one of csv, tsv or table
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

type Factor struct {
	Name string `json:"name" yaml:"name"`
	Expr Expr   `json:"expr" yaml:"expr"`
}

// Expr is one node of a factor expression. Which attributes are used
// depends on the op.
type Expr struct {
	Op      string   `json:"op" yaml:"op"`
	Field   string   `json:"field,omitempty" yaml:"field,omitempty"`
	Fields  []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Window  int      `json:"window,omitempty" yaml:"window,omitempty"`
	Value   *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	N       int      `json:"n,omitempty" yaml:"n,omitempty"`
	Short   int      `json:"short,omitempty" yaml:"short,omitempty"`
	Long    int      `json:"long,omitempty" yaml:"long,omitempty"`
	Percent float64  `json:"percent,omitempty" yaml:"percent,omitempty"`
	Args    []Expr   `json:"args,omitempty" yaml:"args,omitempty"`
}

// NamedHolder is a factor built from its expression.
type NamedHolder struct {
	Name   string
	Holder holder.Holder
}

func Load(configFile string) (*Config, error) {
	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	return Parse(content)
}

// Parse decodes the YAML document and checks that every factor builds.
func Parse(content []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, errors.Wrap(err, "unable to parse factor config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if len(c.Factors) == 0 {
		return errors.New("factors should not be empty")
	}

	seen := map[string]struct{}{}
	for i, f := range c.Factors {
		if f.Name == "" {
			return errors.Errorf("factor #%d has no name", i)
		}
		if _, ok := seen[f.Name]; ok {
			return errors.Errorf("duplicate factor name %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if _, err := Build(&f.Expr); err != nil {
			return errors.Wrapf(err, "factor %q", f.Name)
		}
	}

	switch c.Output.Format {
	case "", "csv", "tsv", "table":
	default:
		return errors.Errorf("unsupported output format %q", c.Output.Format)
	}

	return nil
}

// BuildFactors builds a fresh holder for every factor, in declaration order.
func (c *Config) BuildFactors() ([]NamedHolder, error) {
	var out []NamedHolder
	for _, f := range c.Factors {
		h, err := Build(&f.Expr)
		if err != nil {
			return nil, errors.Wrapf(err, "factor %q", f.Name)
		}
		out = append(out, NamedHolder{Name: f.Name, Holder: h})
	}
	return out, nil
}
