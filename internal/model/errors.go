package model

import (
	"fmt"
	"strings"
)

// InputShapeError reports a rule whose fields have the wrong shape, such as
// a parameter list given as a single string.
type InputShapeError struct {
	Rule   int // zero-based index in the rule list, -1 if unknown
	Field  string
	Reason string
}

func (e *InputShapeError) Error() string {
	if e.Rule < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("rule %d: invalid %s: %s", e.Rule+1, e.Field, e.Reason)
}

// ConfigurationIncompleteError reports references to zones or groups that
// are not declared.
type ConfigurationIncompleteError struct {
	Missing []string // e.g. "zone dmz", "port-group vpn"
}

func (e *ConfigurationIncompleteError) Error() string {
	return "configuration incomplete: undeclared " + strings.Join(e.Missing, ", ")
}

// DuplicateDeclarationError reports a zone or group declared twice.
type DuplicateDeclarationError struct {
	Kind string
	Name string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Name)
}
