package prompts

import (
	"fmt"
	"sync"
)

type Template struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     func(Input) (string, error)
	User       func(Input) (string, error)
	Validate   Validator
}

var (
	registryMu sync.RWMutex
	registry   = map[PromptName]Template{}
	registerMu sync.Once
)

// Register registers a compiled Template, replacing any previous one of the same name.
func Register(t Template) {
	registryMu.Lock()
	registry[t.Name] = t
	registryMu.Unlock()
}

func lookup(name PromptName) (Template, bool) {
	registerMu.Do(RegisterAll)
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// Build renders the named prompt for in.
func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := lookup(name)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", name)
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	system, err := t.System(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	user, err := t.User(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	p := Prompt{
		Name:       string(t.Name),
		Version:    t.Version,
		SchemaName: t.SchemaName,
		System:     system,
		User:       user,
	}
	if t.Schema != nil {
		p.Schema = t.Schema()
	}
	return p, nil
}

func Schema(name PromptName) (schemaName string, schema map[string]any, ok bool) {
	t, ok := lookup(name)
	if !ok || t.Schema == nil {
		return "", nil, false
	}
	return t.SchemaName, t.Schema(), true
}
