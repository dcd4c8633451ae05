package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/retrace/internal/graph"
)

// Case is the YAML document generated for one recorded entry. Graphs
// are embedded as canonical JSON so decoding them back is lossless.
type Case struct {
	Func     string `yaml:"func"`
	Entry    string `yaml:"entry"`
	Args     string `yaml:"args"`
	Kwargs   string `yaml:"kwargs"`
	Expected string `yaml:"expected"`
}

// LoadCase reads and parses a case file.
func LoadCase(path string) (Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Case{}, fmt.Errorf("reading case: %w", err)
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Case{}, fmt.Errorf("parsing case %s: %w", path, err)
	}
	return c, nil
}

// Graphs decodes the case's embedded graph JSON.
func (c Case) Graphs() (args, kwargs, expected graph.Node, err error) {
	if args, err = graph.UnmarshalNode([]byte(c.Args)); err != nil {
		return nil, nil, nil, fmt.Errorf("case %s args: %w", c.Entry, err)
	}
	if kwargs, err = graph.UnmarshalNode([]byte(c.Kwargs)); err != nil {
		return nil, nil, nil, fmt.Errorf("case %s kwargs: %w", c.Entry, err)
	}
	if expected, err = graph.UnmarshalNode([]byte(c.Expected)); err != nil {
		return nil, nil, nil, fmt.Errorf("case %s expected: %w", c.Entry, err)
	}
	return args, kwargs, expected, nil
}
