// module.go
//
// Modules are the unit of word organization and scoping. A module owns an
// insertion-ordered word list (resolution scans newest-first so
// redefinition shadows), an export allow-list consulted when the module is
// imported, lazily created variables, and registered submodules.
package forthic

import "fmt"

// Module is a named collection of words, variables and submodules.
type Module struct {
	Name        string
	Description string
	Source      string // Forthic source run when the module is initialized

	words       []Word
	exportable  map[string]bool
	exportOrder []string
	variables   map[string]*Variable
	modules     map[string]*Module
	usings      []*Module
}

// AddUsing records an imported module. Imported modules are shared, not
// copied: only their exported words resolve, and later imports win name
// clashes.
func (m *Module) AddUsing(src *Module) {
	for _, u := range m.usings {
		if u == src {
			return
		}
	}
	m.usings = append(m.usings, src)
}

// Usings returns the modules imported with USE-MODULES, in import order.
func (m *Module) Usings() []*Module {
	out := make([]*Module, len(m.usings))
	copy(out, m.usings)
	return out
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		exportable: map[string]bool{},
		variables:  map[string]*Variable{},
		modules:    map[string]*Module{},
	}
}

// Fork creates an independent copy for a new interpreter instance: the
// word list, exports and usings carry over, variables get fresh cells with
// deep-copied values, and submodules fork recursively. Word objects are
// shared; they are immutable once installed.
func (m *Module) Fork() *Module {
	out := &Module{
		Name:        m.Name,
		Description: m.Description,
		Source:      m.Source,
		words:       append([]Word(nil), m.words...),
		exportable:  make(map[string]bool, len(m.exportable)),
		exportOrder: append([]string(nil), m.exportOrder...),
		variables:   make(map[string]*Variable, len(m.variables)),
		modules:     make(map[string]*Module, len(m.modules)),
		usings:      append([]*Module(nil), m.usings...),
	}
	for name := range m.exportable {
		out.exportable[name] = true
	}
	for name, v := range m.variables {
		out.variables[name] = &Variable{Name: name, Value: DeepCopy(v.Value)}
	}
	for name, sub := range m.modules {
		out.modules[name] = sub.Fork()
	}
	return out
}

// AddWord appends a word. Later words shadow earlier ones of the same name.
func (m *Module) AddWord(w Word) { m.words = append(m.words, w) }

// FindWord resolves a name in this module, newest definition first.
func (m *Module) FindWord(name string) (Word, bool) {
	for i := len(m.words) - 1; i >= 0; i-- {
		if m.words[i].Name() == name {
			return m.words[i], true
		}
	}
	return nil, false
}

// FindExportedWord resolves a name only if the module exports it.
func (m *Module) FindExportedWord(name string) (Word, bool) {
	if !m.exportable[name] {
		return nil, false
	}
	return m.FindWord(name)
}

// AddExportable marks names as visible to importers. Memoized definitions
// export their refresh companions alongside the base name.
func (m *Module) AddExportable(names ...string) {
	for _, name := range names {
		if !m.exportable[name] {
			m.exportOrder = append(m.exportOrder, name)
		}
		m.exportable[name] = true
		if w, ok := m.FindWord(name); ok {
			if _, isMemo := w.(*MemoWord); isMemo {
				m.AddExportable(name+"!", name+"!@")
			}
		}
	}
}

// Exportable lists exported names in the order they were exported.
func (m *Module) Exportable() []string {
	out := make([]string, len(m.exportOrder))
	copy(out, m.exportOrder)
	return out
}

// IsExportable reports whether name is on the export list.
func (m *Module) IsExportable(name string) bool { return m.exportable[name] }

// Words returns the word list in insertion order.
func (m *Module) Words() []Word {
	out := make([]Word, len(m.words))
	copy(out, m.words)
	return out
}

// WordCount returns the number of installed words.
func (m *Module) WordCount() int { return len(m.words) }

// EnsureVariable returns the named variable, creating it (initialized to
// null) on first use.
func (m *Module) EnsureVariable(name string) *Variable {
	if v, ok := m.variables[name]; ok {
		return v
	}
	v := &Variable{Name: name, Value: Null}
	m.variables[name] = v
	return v
}

// FindVariable looks up a variable without creating it.
func (m *Module) FindVariable(name string) (*Variable, bool) {
	v, ok := m.variables[name]
	return v, ok
}

// RegisterModule installs a submodule under its own name.
func (m *Module) RegisterModule(sub *Module) {
	m.modules[sub.Name] = sub
}

// FindModule looks up a registered submodule.
func (m *Module) FindModule(name string) (*Module, bool) {
	sub, ok := m.modules[name]
	return sub, ok
}

// EnsureModule returns the named submodule, creating an empty one when
// absent. Used by "{name" blocks.
func (m *Module) EnsureModule(name string) *Module {
	if sub, ok := m.modules[name]; ok {
		return sub
	}
	sub := NewModule(name)
	m.modules[name] = sub
	return sub
}

// AddNativeWord builds a NativeWord from a stack effect and installs it.
// The stack effect string must be well-formed; this is the registration
// path for built-in modules, so a malformed effect is a programming error.
func (m *Module) AddNativeWord(name, stackEffect, doc string, fn NativeFn) {
	m.AddWord(mustNativeWord(name, stackEffect, doc, fn))
}

// AddExportedNative installs a native word and exports it in one step.
func (m *Module) AddExportedNative(name, stackEffect, doc string, fn NativeFn) {
	m.AddNativeWord(name, stackEffect, doc, fn)
	m.AddExportable(name)
}

// AddDirectWord installs a direct (interpreter-receiving) word.
func (m *Module) AddDirectWord(name, doc string, fn func(ip *Interpreter) error) {
	m.AddWord(NewDirectWord(name, doc, fn))
}

// AddExportedDirect installs a direct word and exports it.
func (m *Module) AddExportedDirect(name, doc string, fn func(ip *Interpreter) error) {
	m.AddDirectWord(name, doc, fn)
	m.AddExportable(name)
}

// ImportPrefixed installs wrapper words for every exported word of src
// under "prefix.NAME" names ("NAME" when prefix is empty). This is the pair
// form of USE-MODULES; the plain form pushes a scope instead (see
// Interpreter.UseModule).
func (m *Module) ImportPrefixed(src *Module, prefix string) error {
	names := src.Exportable()
	if len(names) == 0 {
		return fmt.Errorf("module %q exports no words", src.Name)
	}
	for _, name := range names {
		w, ok := src.FindWord(name)
		if !ok {
			return fmt.Errorf("module %q exports %q but does not define it", src.Name, name)
		}
		m.AddWord(NewImportedWord(prefix, w, src))
	}
	return nil
}
