package module

import (
	"fmt"
	"strings"
)

// Manifest is a module type's declared method table. It is validated at
// registration time so that dispatch can check the schema instead of
// probing instances at call time.
type Manifest struct {
	Type        string
	Description string
	Methods     []MethodSpec
}

// MethodSpec declares one callable method.
type MethodSpec struct {
	Name string
	// ExecuteOnLoad marks methods the engine runs with default options when
	// a placement's constructor batch omits them.
	ExecuteOnLoad bool
	Options       []OptionSpec
}

// OptionSpec declares one option of a method.
type OptionSpec struct {
	Name    string
	Default any
	// Type is the editor-facing value kind: "number", "string", "bool",
	// "color" or "select".
	Type               string
	Min                *float64
	Max                *float64
	Values             []string
	AllowRandomization bool
}

// Method returns the named method spec, or false.
func (m *Manifest) Method(name string) (*MethodSpec, bool) {
	for i := range m.Methods {
		if m.Methods[i].Name == name {
			return &m.Methods[i], true
		}
	}
	return nil, false
}

// DefaultOptions builds the option bag a method receives when invoked with
// its declared defaults.
func (s *MethodSpec) DefaultOptions() Options {
	opts := make(Options, len(s.Options))
	for _, o := range s.Options {
		opts[o.Name] = o.Default
	}
	return opts
}

// Validate performs a structural check of the manifest: a non-empty type,
// unique method and option names, and select options carrying values.
func (m *Manifest) Validate() error {
	var errs []string
	if m.Type == "" {
		errs = append(errs, "manifest has empty module type")
	}
	seen := make(map[string]struct{}, len(m.Methods))
	for _, method := range m.Methods {
		if method.Name == "" {
			errs = append(errs, fmt.Sprintf("module '%s': method with empty name", m.Type))
			continue
		}
		if _, dup := seen[method.Name]; dup {
			errs = append(errs, fmt.Sprintf("module '%s': duplicate method '%s'", m.Type, method.Name))
		}
		seen[method.Name] = struct{}{}

		optSeen := make(map[string]struct{}, len(method.Options))
		for _, opt := range method.Options {
			if _, dup := optSeen[opt.Name]; dup {
				errs = append(errs, fmt.Sprintf("module '%s': method '%s' declares option '%s' twice", m.Type, method.Name, opt.Name))
			}
			optSeen[opt.Name] = struct{}{}
			if opt.Type == "select" && len(opt.Values) == 0 {
				errs = append(errs, fmt.Sprintf("module '%s': select option '%s.%s' has no values", m.Type, method.Name, opt.Name))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("manifest validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
