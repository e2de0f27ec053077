// Package dispatch implements the command dispatcher: handler
// registration, return-shape normalization, and pipeline execution.
package dispatch

// CommandResult is the normalized outcome of running one handler or one
// whole pipeline.
type CommandResult struct {
	Success  bool
	Output   string
	Error    string
	ExitCode int
}

// Tuple is the loose "(ok, out[, err])" shape a handler may return
// instead of a full CommandResult.
type Tuple struct {
	OK  bool
	Out string
	Err string
}

// normalize converts a handler's raw return value into a CommandResult:
// CommandResult passes through unchanged; a Tuple becomes {success: OK,
// output: Out, error: Err}; a bare string is success with that output;
// nil is success with empty output; an error is failure with that
// error's message.
func normalize(raw any) CommandResult {
	switch v := raw.(type) {
	case CommandResult:
		return v
	case Tuple:
		return CommandResult{Success: v.OK, Output: v.Out, Error: v.Err, ExitCode: exitCodeFor(v.OK)}
	case string:
		return CommandResult{Success: true, Output: v}
	case nil:
		return CommandResult{Success: true}
	case error:
		return CommandResult{Success: false, Error: v.Error(), ExitCode: 1}
	default:
		return CommandResult{Success: false, Error: "handler returned an unsupported result type", ExitCode: 1}
	}
}

func exitCodeFor(ok bool) int {
	if ok {
		return 0
	}
	return 1
}
