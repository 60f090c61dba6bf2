package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Spec is the declaration format for a prompt. System and User may be plain
// strings or Go templates over Input. Leave SchemaName/Schema empty for text output.
type Spec struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     string
	User       string
	Validators []Validator
}

// MakeTemplate compiles a Spec into a Template.
func MakeTemplate(s Spec) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	if (strings.TrimSpace(s.SchemaName) == "") != (s.Schema == nil) {
		return Template{}, fmt.Errorf("%s: schema name and schema func must be set together", s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	tt := Template{
		Name:       s.Name,
		Version:    s.Version,
		SchemaName: strings.TrimSpace(s.SchemaName),
		Schema:     s.Schema,
		System:     renderer(sysT),
		User:       renderer(userT),
	}
	if len(s.Validators) > 0 {
		validators := s.Validators
		tt.Validate = func(in Input) error {
			for _, v := range validators {
				if v == nil {
					continue
				}
				if err := v(in); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return tt, nil
}

func renderer(t *template.Template) func(Input) (string, error) {
	return func(in Input) (string, error) {
		var b bytes.Buffer
		if err := t.Execute(&b, in); err != nil {
			return "", fmt.Errorf("render %s: %w", t.Name(), err)
		}
		return strings.TrimSpace(b.String()), nil
	}
}

// RegisterSpec compiles and registers s, panicking on a malformed spec.
func RegisterSpec(s Spec) {
	t, err := MakeTemplate(s)
	if err != nil {
		panic(err)
	}
	Register(t)
}
