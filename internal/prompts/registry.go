package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"resumelens/internal/errors"
)

type templateKey struct {
	agent   Agent
	version string
}

// Registry resolves prompt templates by (agent, version). It is built from
// the language-selected defaults, then optional per-agent override files
// from a template directory. Reload re-applies the overrides, which lets a
// file watcher swap prompt wording without a restart.
type Registry struct {
	mu        sync.RWMutex
	language  string
	dir       string
	templates map[templateKey]Template
}

// NewRegistry builds a registry for the given language ("en" or "ja") with
// optional override files from dir.
func NewRegistry(language, dir string) (*Registry, error) {
	var defaults []Template
	switch language {
	case "en":
		defaults = defaultTemplatesEN()
	case "ja":
		defaults = defaultTemplatesJA()
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported prompt language: %s", language), nil)
	}

	r := &Registry{
		language:  language,
		dir:       dir,
		templates: make(map[templateKey]Template, len(defaults)),
	}
	for _, tmpl := range defaults {
		r.templates[templateKey{tmpl.Agent, tmpl.Version}] = tmpl
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the template for an (agent, version) pair. Unknown pairs are a
// configuration error, not a fallback.
func (r *Registry) Get(agent Agent, version string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[templateKey{agent, version}]
	if !ok {
		return Template{}, errors.NewConfigError(errors.ErrCodeUnknownPromptTemplate,
			fmt.Sprintf("no prompt template registered for agent %q version %q", agent, version), nil).
			WithContext("agent", string(agent)).
			WithContext("version", version)
	}
	return tmpl, nil
}

// Reload re-reads override files from the template directory. Override files
// are named <agent>_system.txt and <agent>_user.txt and replace the
// corresponding text for every registered version of that agent; extraction
// rules always stay at their built-in values.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return nil
	}

	type override struct {
		agent  Agent
		system string
		user   string
	}
	overrides := make(map[Agent]*override)

	for _, agent := range []Agent{AgentStructure, AgentAppeal} {
		ov := &override{agent: agent}
		for _, part := range []struct {
			suffix string
			target *string
		}{
			{"system", &ov.system},
			{"user", &ov.user},
		} {
			path := filepath.Join(r.dir, fmt.Sprintf("%s_%s.txt", agent, part.suffix))
			content, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return errors.NewIOError(errors.ErrCodeFileNotReadable,
					fmt.Sprintf("failed to read prompt override file: %s", path), err)
			}
			trimmed := strings.TrimSpace(string(content))
			if trimmed == "" {
				return errors.NewConfigError(errors.ErrCodeInvalidConfig,
					fmt.Sprintf("prompt override file is empty: %s", path), nil)
			}
			*part.target = trimmed
		}
		if ov.system != "" || ov.user != "" {
			overrides[agent] = ov
		}
	}

	if len(overrides) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, tmpl := range r.templates {
		ov, ok := overrides[key.agent]
		if !ok {
			continue
		}
		if ov.system != "" {
			tmpl.System = ov.system
		}
		if ov.user != "" {
			tmpl.User = ov.user
		}
		r.templates[key] = tmpl
	}
	return nil
}

// Language returns the language the registry was built with.
func (r *Registry) Language() string {
	return r.language
}
