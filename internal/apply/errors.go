package apply

import "fmt"

// ApplyError reports a failed push to the configuration shell. The command
// list that was being applied is never modified.
type ApplyError struct {
	Reason  string
	Outcome *Outcome // nil when the shell never ran
	Err     error
}

func (e *ApplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apply failed: %s: %v", e.Reason, e.Err)
	}
	return "apply failed: " + e.Reason
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// PromptError reports an invalid default answer for a confirmation prompt.
type PromptError struct {
	Default string
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("invalid default answer %q: only y or n permitted", e.Default)
}
