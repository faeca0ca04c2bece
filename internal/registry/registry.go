// Package registry holds the vendor extraction specialist definitions.
// Specialists are declared in an embedded YAML file so prompt tuning does
// not require touching pipeline code.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed specialists.yaml
var specialistsYAML []byte

// Specialist is one vendor extraction agent definition.
type Specialist struct {
	// Name is the stage name within the vendor extraction group.
	Name string `yaml:"name"`
	// ResultField is the top-level JSON field the model must return its
	// element list under.
	ResultField string `yaml:"result_field"`
	// Description is the specialist's role statement.
	Description string `yaml:"description"`
	// Instructions are the numbered extraction directives.
	Instructions []string `yaml:"instructions"`
}

// Prompt renders the specialist definition as a system prompt.
func (s Specialist) Prompt() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(s.Description))
	b.WriteString("\n\n")
	for i, inst := range s.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, inst)
	}
	fmt.Fprintf(&b, "\nRespond with a JSON object containing a single %q array.", s.ResultField)
	return b.String()
}

// Registry is the loaded set of specialists, in declaration order.
type Registry struct {
	Specialists []Specialist `yaml:"specialists"`
}

// Load parses the embedded specialist definitions.
func Load() (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(specialistsYAML, &r); err != nil {
		return nil, eris.Wrap(err, "registry: parse specialists")
	}
	if len(r.Specialists) == 0 {
		return nil, eris.New("registry: no specialists defined")
	}

	seen := make(map[string]bool, len(r.Specialists))
	for _, s := range r.Specialists {
		if s.Name == "" || s.ResultField == "" {
			return nil, eris.Errorf("registry: specialist %q missing name or result_field", s.Name)
		}
		if seen[s.Name] {
			return nil, eris.Errorf("registry: duplicate specialist %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &r, nil
}

// Get returns the specialist with the given name.
func (r *Registry) Get(name string) (Specialist, bool) {
	for _, s := range r.Specialists {
		if s.Name == name {
			return s, true
		}
	}
	return Specialist{}, false
}

// Names returns specialist names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.Specialists))
	for i, s := range r.Specialists {
		out[i] = s.Name
	}
	return out
}
