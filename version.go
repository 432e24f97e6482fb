package forthic

// Version is the interpreter release, reported by the CLI and overridable
// at link time.
var (
	Version   = "0.1.0"
	BuildDate = "dev"
)
