package system

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fumin/sbc/scalar"
)

// Config is the YAML representation of a Model.
// Each parameter is either a number, or a mapping of samples such as
//
//	{times: [0, 1, 2], values: [0, 0.5, 1]}
//
// which is linearly interpolated in time.
type Config struct {
	ZFields    []Param `yaml:"z_fields"`
	XFields    []Param `yaml:"x_fields"`
	ZZCouplers []Param `yaml:"zz_couplers"`
}

// Param is a model parameter in a Config.
type Param struct {
	scalar.Input
}

type samples struct {
	Times  []float64 `yaml:"times"`
	Values []float64 `yaml:"values"`
}

func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return errors.Wrap(err, "")
		}
		p.Input = scalar.Number(v)
	case yaml.MappingNode:
		var smp samples
		if err := node.Decode(&smp); err != nil {
			return errors.Wrap(err, "")
		}
		s, err := scalar.Sampled(smp.Times, smp.Values)
		if err != nil {
			return errors.Wrap(err, "")
		}
		p.Input = s
	default:
		return errors.Errorf("line %d: unexpected parameter %v", node.Line, node.Value)
	}
	return nil
}

// Model creates the model parameters described by cfg.
func (cfg Config) Model() (*Model, error) {
	inputs := func(ps []Param) []scalar.Input {
		ins := make([]scalar.Input, 0, len(ps))
		for _, p := range ps {
			ins = append(ins, p.Input)
		}
		return ins
	}
	m, err := New(inputs(cfg.ZFields), inputs(cfg.XFields), inputs(cfg.ZZCouplers))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// ParseConfig creates the model parameters from a YAML document.
func ParseConfig(b []byte) (*Model, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "")
	}
	m, err := cfg.Model()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// ReadConfig creates the model parameters from a YAML file.
func ReadConfig(fpath string) (*Model, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m, err := ParseConfig(b)
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return m, nil
}
