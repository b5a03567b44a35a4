package grammar

import "fmt"

// CommandKind identifies a leaf command.
type CommandKind int

// Leaf command kinds.
const (
	KindNone CommandKind = iota
	PrintRequests
	PrintVariables
	PrintEnvironments
	PrintWorkspaces
	CreateRequest
	CreateVariable
	DeleteRequests
	DeleteVariables
	DeleteOptions
	SetEnvironment
	SetWorkspace
	Run
	Extract
	Info
)

var kindNames = [...]string{
	KindNone:          "None",
	PrintRequests:     "PrintRequests",
	PrintVariables:    "PrintVariables",
	PrintEnvironments: "PrintEnvironments",
	PrintWorkspaces:   "PrintWorkspaces",
	CreateRequest:     "CreateRequest",
	CreateVariable:    "CreateVariable",
	DeleteRequests:    "DeleteRequests",
	DeleteVariables:   "DeleteVariables",
	DeleteOptions:     "DeleteOptions",
	SetEnvironment:    "SetEnvironment",
	SetWorkspace:      "SetWorkspace",
	Run:               "Run",
	Extract:           "Extract",
	Info:              "Info",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// MarshalText lets kinds appear by name in JSON output.
func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ArgKey names a positional slot of a command.
type ArgKey string

// Positional slots.
const (
	ArgName        ArgKey = "name"
	ArgURL         ArgKey = "url"
	ArgEnvironment ArgKey = "environment"
	ArgWorkspace   ArgKey = "workspace"
	ArgRequest     ArgKey = "request"
	ArgSource      ArgKey = "source"
	ArgLookup      ArgKey = "key"
	// ArgUnknown is the catch-all that collects every extra positional.
	ArgUnknown ArgKey = "unknown"
)

// OptKey names a flag of a command.
type OptKey string

// Flags.
const (
	OptMethod OptKey = "method"
	OptHeader OptKey = "header"
	OptBody   OptKey = "body"
	OptToVar  OptKey = "to-var"
)

// FieldKey is either a positional slot or a flag. Exactly one of Arg and Opt
// is set.
type FieldKey struct {
	Arg ArgKey
	Opt OptKey
}

// ArgField returns the field key of a positional slot.
func ArgField(k ArgKey) FieldKey { return FieldKey{Arg: k} }

// OptField returns the field key of a flag.
func OptField(k OptKey) FieldKey { return FieldKey{Opt: k} }

// IsOption reports whether the field is a flag.
func (f FieldKey) IsOption() bool { return f.Opt != "" }

func (f FieldKey) String() string {
	if f.IsOption() {
		return "--" + string(f.Opt)
	}
	return string(f.Arg)
}
