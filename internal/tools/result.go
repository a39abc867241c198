package tools

import "fmt"

// Result is the discriminated outcome of a tool invocation: either a
// success with an output payload or a failure with an error message,
// never both.
type Result struct {
	Success bool
	Output  string
	Meta    map[string]any
	Error   string
}

// Ok returns a success result with the given output payload.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Okf returns a success result with a formatted output payload.
func Okf(format string, args ...any) Result {
	return Ok(fmt.Sprintf(format, args...))
}

// OkMeta returns a success result carrying extra metadata.
func OkMeta(output string, meta map[string]any) Result {
	return Result{Success: true, Output: output, Meta: meta}
}

// Fail returns a failure result with the given error message.
func Fail(msg string) Result {
	return Result{Success: false, Error: msg}
}

// Failf returns a failure result with a formatted error message.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// Observation renders the result as the text fed back to the model.
func (r Result) Observation() string {
	if r.Success {
		return r.Output
	}
	return "Error: " + r.Error
}
