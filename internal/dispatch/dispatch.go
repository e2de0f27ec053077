package dispatch

import (
	"context"
	"fmt"
	"strings"

	"convfs/internal/env"
	"convfs/internal/navigator"
	"convfs/internal/repo"
	"convfs/internal/shellsyntax"
)

// HandlerContext is what a command handler is given besides its own args
// and stdin: the Navigator and Repository it may call into, plus the
// shared Environment.
type HandlerContext struct {
	Ctx  context.Context
	Nav  *navigator.Navigator
	Repo repo.Repository
	Env  *env.Environment
}

// Handler is the registered shape for one command name. It may return a
// CommandResult, a Tuple, a bare string, nil, or an error; Execute
// normalizes whichever it gets.
type Handler func(hc *HandlerContext, args []string, stdin string) any

// Dispatcher owns the name->handler registry and runs pipelines against a
// fixed HandlerContext.
type Dispatcher struct {
	handlers map[string]Handler
	hc       *HandlerContext
}

// New creates a Dispatcher bound to hc. Handlers are registered with
// Register after construction.
func New(hc *HandlerContext) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		hc:       hc,
	}
}

// Register binds name (matched case-insensitively at dispatch time) to h.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[strings.ToLower(name)] = h
}

// ExecutePipeline runs each stage of commands in order, feeding stage i's
// output as stage i+1's stdin and halting at the first failing stage,
// whose result becomes the pipeline's result.
func (d *Dispatcher) ExecutePipeline(commands []shellsyntax.ParsedCommand) CommandResult {
	if len(commands) == 0 {
		return CommandResult{Success: false, Error: "No command to execute"}
	}

	stdin := ""
	var result CommandResult
	for _, cmd := range commands {
		result = d.executeStage(cmd, stdin)
		if !result.Success {
			return result
		}
		stdin = result.Output
	}
	return result
}

func (d *Dispatcher) executeStage(cmd shellsyntax.ParsedCommand, stdin string) (result CommandResult) {
	name := strings.ToLower(cmd.Name)
	handler, ok := d.handlers[name]
	if !ok {
		return CommandResult{Success: false, Error: fmt.Sprintf("Command not found: %s", cmd.Name), ExitCode: 127}
	}

	defer func() {
		if r := recover(); r != nil {
			result = CommandResult{
				Success:  false,
				Error:    fmt.Sprintf("Error executing %s: %v", cmd.Name, r),
				ExitCode: 1,
			}
		}
	}()

	raw := handler(d.hc, cmd.Args, stdin)
	return normalize(raw)
}
