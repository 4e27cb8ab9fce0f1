package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoHosts indicates a source produced no machines
	ErrNoHosts = errors.New("no hosts found")

	// ErrAmbiguousMachineList indicates the machine list string may have been
	// read as inline data when it was a path, or the other way round
	ErrAmbiguousMachineList = errors.New("machine list could be inline data or a file path")

	// ErrInvalidTasksPerNode indicates a malformed SLURM tasks-per-node value
	ErrInvalidTasksPerNode = errors.New("invalid SLURM tasks per node")

	// ErrTasksPerNodeMismatch indicates the tasks-per-node sequence does not
	// have one entry per host
	ErrTasksPerNodeMismatch = errors.New("SLURM tasks per node does not match host count")

	// ErrNodeAddrUnavailable indicates scontrol returned no usable node addresses
	ErrNodeAddrUnavailable = errors.New("no node addresses in scontrol output")

	// ErrProbeUnavailable indicates the prober has no binary to run
	ErrProbeUnavailable = errors.New("probe command not available")
)

// ParseError represents malformed allocation text
type ParseError struct {
	Format  SchedulerType // Source format (e.g., "UGE", "SLURM")
	Line    int           // Line or token number where the error occurred
	Content string        // Offending content
	Reason  string        // Reason for parse failure
	Err     error         // Underlying error (optional)
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at line %d (%s): %s",
			e.Format, e.Line, e.Content, e.Reason)
	}
	if e.Content != "" {
		return fmt.Sprintf("%s parse error (%s): %s", e.Format, e.Content, e.Reason)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// HostfileError represents a file referenced by the allocation that could not be read
type HostfileError struct {
	Format SchedulerType // Source format
	Path   string        // File path
	Err    error         // Underlying error
}

func (e *HostfileError) Error() string {
	return fmt.Sprintf("%s: cannot read host file %s: %v", e.Format, e.Path, e.Err)
}

func (e *HostfileError) Unwrap() error {
	return e.Err
}

// ProbeError represents a failed reachability or node address probe
type ProbeError struct {
	Op     string // Operation (e.g., "ssh", "scontrol show node")
	Cmd    string // Full command that was executed
	Output string // Combined command output
	Err    error  // Underlying error
}

func (e *ProbeError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v\nCommand: %s\nOutput: %s", e.Op, e.Err, e.Cmd, e.Output)
	}
	return fmt.Sprintf("%s failed: %v\nCommand: %s", e.Op, e.Err, e.Cmd)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewParseError creates a new ParseError
func NewParseError(format SchedulerType, line int, content string, reason string) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Content: content,
		Reason:  reason,
	}
}

// wrapParseError creates a ParseError carrying an underlying error
func wrapParseError(format SchedulerType, line int, content string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Content: content,
		Reason:  err.Error(),
		Err:     err,
	}
}

// NewHostfileError creates a new HostfileError
func NewHostfileError(format SchedulerType, path string, err error) *HostfileError {
	return &HostfileError{
		Format: format,
		Path:   path,
		Err:    err,
	}
}

// IsParseError checks if an error is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsHostfileError checks if an error is a HostfileError
func IsHostfileError(err error) bool {
	var he *HostfileError
	return errors.As(err, &he)
}

// IsProbeError checks if an error is a ProbeError
func IsProbeError(err error) bool {
	var pe *ProbeError
	return errors.As(err, &pe)
}
