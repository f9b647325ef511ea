package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forthcheck/forthcheck/internal/forth"
)

// Scenario is a data-driven check script loaded from YAML. All setup
// statements and checks run against one interpreter instance created fresh
// for the scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// CoreSize overrides the interpreter core size. Zero selects the
	// default size.
	CoreSize int `yaml:"core_size,omitempty"`

	// Setup contains source strings evaluated as statements before the
	// checks. Setup failures are not caught.
	Setup []ScenarioStep `yaml:"setup,omitempty"`

	// Checks are the fault-protected checks.
	Checks []ScenarioCheck `yaml:"checks"`

	path string // scenario file, reported as the failure location
}

// ScenarioStep is one setup statement.
type ScenarioStep struct {
	// Eval is the source string to interpret.
	Eval string `yaml:"eval"`
}

// ScenarioCheck is one check: evaluate a source string, then compare the
// outcome against the expectations.
type ScenarioCheck struct {
	// Eval is the source string to interpret.
	Eval string `yaml:"eval"`

	// Expect lists values popped off the stack after Eval, top first.
	// Expected values missing from the stack raise a fault, which counts
	// as a failed check.
	Expect []int64 `yaml:"expect,omitempty"`

	// ExpectError inverts the eval outcome: the check passes only when
	// Eval returns an error (e.g. an unknown word).
	ExpectError bool `yaml:"expect_error,omitempty"`

	// Must marks the check as mandatory: its failure aborts the run.
	Must bool `yaml:"must,omitempty"`

	line int // captured from the YAML node
}

// UnmarshalYAML decodes a check and records its line in the scenario file
// so failures can point at it.
func (c *ScenarioCheck) UnmarshalYAML(node *yaml.Node) error {
	type plain ScenarioCheck
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = ScenarioCheck(p)
	c.line = node.Line
	return nil
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected to catch typos, and required fields are validated.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	s.path = path

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// validateScenario checks required fields.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.CoreSize != 0 && s.CoreSize < forth.MinCoreSize {
		return fmt.Errorf("core_size %d below minimum %d", s.CoreSize, forth.MinCoreSize)
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}
	for i, step := range s.Setup {
		if step.Eval == "" {
			return fmt.Errorf("setup[%d]: eval is required", i)
		}
	}
	for i, c := range s.Checks {
		if c.Eval == "" {
			return fmt.Errorf("checks[%d]: eval is required", i)
		}
		if c.ExpectError && len(c.Expect) > 0 {
			return fmt.Errorf("checks[%d]: expect and expect_error are mutually exclusive", i)
		}
	}
	return nil
}

// Script converts the scenario into a runnable script. The interpreter is
// created lazily by the first statement so construction failures surface as
// a failed mandatory check rather than an error from this method.
func (s *Scenario) Script(out io.Writer) *Script {
	size := s.CoreSize
	if size == 0 {
		size = forth.DefaultCoreSize
	}

	var (
		f   *forth.Forth
		err error
	)

	setup := Phase{Name: "setup"}
	setup.Steps = append(setup.Steps, Step{
		Kind: KindState,
		Text: fmt.Sprintf("f = forth.New(%d)", size),
		File: s.path,
		Do:   func() bool { f, err = forth.New(size, out); return true },
	})
	setup.Steps = append(setup.Steps, Step{
		Kind: KindMust,
		Text: "f != nil",
		File: s.path,
		Do:   func() bool { return err == nil && f != nil },
	})
	for _, st := range s.Setup {
		src := st.Eval
		setup.Steps = append(setup.Steps, Step{
			Kind: KindState,
			Text: fmt.Sprintf("f.Eval(%q)", src),
			File: s.path,
			Do:   func() bool { _ = f.Eval(src); return true },
		})
	}

	checks := Phase{Name: "checks"}
	for _, c := range s.Checks {
		c := c
		kind := KindCheck
		if c.Must {
			kind = KindMust
		}
		checks.Steps = append(checks.Steps, Step{
			Kind: kind,
			Text: fmt.Sprintf("f.Eval(%q)", c.Eval),
			File: s.path,
			Line: c.line,
			Do: func() bool {
				evalErr := f.Eval(c.Eval)
				if c.ExpectError {
					return evalErr != nil
				}
				if evalErr != nil {
					return false
				}
				for _, want := range c.Expect {
					if f.Pop() != forth.Cell(want) {
						return false
					}
				}
				return true
			},
		})
	}

	return &Script{Name: s.Name, Phases: []Phase{setup, checks}}
}
