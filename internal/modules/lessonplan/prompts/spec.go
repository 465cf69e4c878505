package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type Validator func(PlanContext) error

func RequireNonEmpty(field string, get func(PlanContext) string) Validator {
	return func(in PlanContext) error {
		if get == nil {
			return fmt.Errorf("validator for %s: getter is nil", field)
		}
		if strings.TrimSpace(get(in)) == "" {
			return fmt.Errorf("%s required", field)
		}
		return nil
	}
}

// Spec is the declaration format for a prompt. System and User are Go
// templates over PlanContext.
type Spec struct {
	Name       string
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     string
	User       string
	Validators []Validator
}

// Prompt is a rendered prompt ready for a structured-output call.
type Prompt struct {
	Name       string
	Version    int
	SchemaName string
	Schema     map[string]any
	System     string
	User       string
}

type compiled struct {
	spec   Spec
	system *template.Template
	user   *template.Template
}

func compile(s Spec) (compiled, error) {
	if strings.TrimSpace(s.Name) == "" {
		return compiled{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return compiled{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	if strings.TrimSpace(s.SchemaName) == "" || s.Schema == nil {
		return compiled{}, fmt.Errorf("missing schema for %s", s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return compiled{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return compiled{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	return compiled{spec: s, system: sysT, user: userT}, nil
}

func (c compiled) render(in PlanContext) (Prompt, error) {
	for _, v := range c.spec.Validators {
		if v == nil {
			continue
		}
		if err := v(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", c.spec.Name, err)
		}
	}
	exec := func(t *template.Template) (string, error) {
		var b bytes.Buffer
		if err := t.Execute(&b, in); err != nil {
			return "", fmt.Errorf("%s render: %w", c.spec.Name, err)
		}
		return strings.TrimSpace(b.String()), nil
	}
	sys, err := exec(c.system)
	if err != nil {
		return Prompt{}, err
	}
	user, err := exec(c.user)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		Name:       c.spec.Name,
		Version:    c.spec.Version,
		SchemaName: c.spec.SchemaName,
		Schema:     c.spec.Schema(),
		System:     sys,
		User:       user,
	}, nil
}

func mustCompile(s Spec) compiled {
	c, err := compile(s)
	if err != nil {
		panic(err)
	}
	return c
}
