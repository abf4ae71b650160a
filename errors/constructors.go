package errors

import (
	stderrors "errors"
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PulseError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PulseError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// MissingCredentials reports that no report target or token is configured.
func MissingCredentials(field string) *PulseError {
	return New(ErrCodeMissingCredentials, fmt.Sprintf("no %s configured, reporting is disabled", field)).
		WithDetail("field", field)
}

// NoActiveDocument reports that the editor has no document focused.
func NoActiveDocument() *PulseError {
	return New(ErrCodeNoActiveDocument, "no active document")
}

// EditorUnavailable wraps a failure to reach the editor.
func EditorUnavailable(address string, err error) *PulseError {
	return Wrap(err, ErrCodeEditorUnavailable, fmt.Sprintf("cannot reach editor at %q", address)).
		WithDetail("address", address)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *PulseError {
	if stderrors.Is(err, exec.ErrNotFound) {
		return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
			WithDetail("command", cmd)
	}

	pulseErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		pulseErr = pulseErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return pulseErr
}

// ReportRejected creates an error for a non-success response from the collector.
func ReportRejected(target string, status int, body string) *PulseError {
	return New(ErrCodeReportRejected,
		fmt.Sprintf("collector rejected report with status %d: %s", status, body)).
		WithDetail("target", target).
		WithDetail("status", status).
		WithDetail("body", body)
}

// ReportFailed wraps a transport failure while sending a report.
func ReportFailed(target string, err error) *PulseError {
	return Wrap(err, ErrCodeReportFailed, "failed to send report").
		WithDetail("target", target)
}

// DaemonRunning reports that another instance already holds the pidfile.
func DaemonRunning(pid int) *PulseError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("pulse is already running with PID %d", pid)).
		WithDetail("pid", pid)
}
