// standard.go
//
// The standard interpreter: a bare interpreter plus the standard library
// modules installed as global modules, so their words resolve everywhere
// beneath user definitions.
package forthic

// StandardModuleNames lists the standard library modules in registration
// order.
var StandardModuleNames = []string{
	"array", "record", "string", "math", "boolean", "json", "datetime",
}

func standardModules() []*Module {
	return []*Module{
		newArrayModule(),
		newRecordModule(),
		newStringModule(),
		newMathModule(),
		newBooleanModule(),
		newJSONModule(),
		newDatetimeModule(),
	}
}

// NewStandardInterpreter creates an interpreter with the full standard
// library. Words defined by the application shadow standard words of the
// same name.
func NewStandardInterpreter() *Interpreter {
	ip := NewInterpreter()
	for _, m := range standardModules() {
		ip.AddGlobalModule(m)
		ip.RegisterModule(m)
	}
	return ip
}
