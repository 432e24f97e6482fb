// loader.go
//
// Runtime-specific modules come from a YAML file listing factory names.
// Factories are compiled in and registered at init time; the config only
// selects and describes them. A missing factory is fatal unless the entry
// is marked optional.
package remote

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v2"

	"github.com/forthic-lang/forthic"
)

// ModuleFactory constructs one module instance.
type ModuleFactory func() (*forthic.Module, error)

// ModuleConfig is one entry of the modules file.
type ModuleConfig struct {
	Name        string `yaml:"name"`
	Factory     string `yaml:"factory"`
	Optional    bool   `yaml:"optional"`
	Description string `yaml:"description"`
}

// ModulesFile is the top-level YAML document.
type ModulesFile struct {
	Modules []ModuleConfig `yaml:"modules"`
}

var (
	factoriesMu sync.RWMutex
	factories   = map[string]ModuleFactory{}
)

// RegisterFactory makes a factory available to module configs. Later
// registrations under the same name win, which lets tests substitute
// factories.
func RegisterFactory(name string, fn ModuleFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = fn
}

func lookupFactory(name string) (ModuleFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	fn, ok := factories[name]
	return fn, ok
}

// ParseModulesConfig decodes a modules file.
func ParseModulesConfig(data []byte) (*ModulesFile, error) {
	var cfg ModulesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing modules config: %w", err)
	}
	for i, mc := range cfg.Modules {
		if mc.Name == "" {
			return nil, fmt.Errorf("modules config entry %d: missing name", i)
		}
		if mc.Factory == "" {
			return nil, fmt.Errorf("modules config entry %d (%s): missing factory", i, mc.Name)
		}
	}
	return &cfg, nil
}

// LoadModulesConfig reads and decodes path.
func LoadModulesConfig(path string) (*ModulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading modules config: %w", err)
	}
	return ParseModulesConfig(data)
}

// InstallModules constructs each configured module and registers it on the
// server as runtime-specific. Optional entries that fail are logged and
// skipped; required ones return *ModuleLoadError.
func InstallModules(s *Server, cfg *ModulesFile) error {
	for _, mc := range cfg.Modules {
		m, err := buildModule(mc)
		if err != nil {
			if mc.Optional {
				log.Warn().Str("module", mc.Name).Err(err).Msg("optional module skipped")
				continue
			}
			return err
		}
		if mc.Description != "" {
			m.Description = mc.Description
		}
		if err := s.RegisterRuntimeModule(m); err != nil {
			return &ModuleLoadError{Name: mc.Name, Factory: mc.Factory, Err: err}
		}
		log.Info().Str("module", mc.Name).Str("factory", mc.Factory).Msg("runtime module registered")
	}
	return nil
}

func buildModule(mc ModuleConfig) (*forthic.Module, error) {
	fn, ok := lookupFactory(mc.Factory)
	if !ok {
		return nil, &ModuleLoadError{Name: mc.Name, Factory: mc.Factory, Err: fmt.Errorf("unknown factory")}
	}
	m, err := fn()
	if err != nil {
		return nil, &ModuleLoadError{Name: mc.Name, Factory: mc.Factory, Err: err}
	}
	if m.Name != mc.Name {
		m.Name = mc.Name
	}
	return m, nil
}
