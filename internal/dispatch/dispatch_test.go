package dispatch

import (
	"testing"

	"convfs/internal/shellsyntax"
)

func testDispatcher() *Dispatcher {
	return New(&HandlerContext{})
}

func TestNormalizeAllReturnShapes(t *testing.T) {
	d := testDispatcher()
	d.Register("cr", func(hc *HandlerContext, args []string, stdin string) any {
		return CommandResult{Success: true, Output: "cr"}
	})
	d.Register("tuple", func(hc *HandlerContext, args []string, stdin string) any {
		return Tuple{OK: true, Out: "tuple"}
	})
	d.Register("str", func(hc *HandlerContext, args []string, stdin string) any {
		return "str"
	})
	d.Register("null", func(hc *HandlerContext, args []string, stdin string) any {
		return nil
	})

	for name, wantOut := range map[string]string{"cr": "cr", "tuple": "tuple", "str": "str", "null": ""} {
		result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: name}})
		if !result.Success || result.Output != wantOut {
			t.Fatalf("%s: got %+v, want success output %q", name, result, wantOut)
		}
	}
}

func TestUnknownCommandIs127(t *testing.T) {
	d := testDispatcher()
	result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: "bogus"}})
	if result.Success || result.ExitCode != 127 {
		t.Fatalf("got %+v", result)
	}
}

func TestEmptyPipelineIsError(t *testing.T) {
	d := testDispatcher()
	result := d.ExecutePipeline(nil)
	if result.Success || result.Error != "No command to execute" {
		t.Fatalf("got %+v", result)
	}
}

func TestPanicingHandlerBecomesHandlerException(t *testing.T) {
	d := testDispatcher()
	d.Register("boom", func(hc *HandlerContext, args []string, stdin string) any {
		panic("kaboom")
	})
	result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: "boom"}})
	if result.Success || result.ExitCode != 1 {
		t.Fatalf("got %+v", result)
	}
}

func TestPipelineHaltsOnFirstFailure(t *testing.T) {
	d := testDispatcher()
	secondCalled := false
	d.Register("fail", func(hc *HandlerContext, args []string, stdin string) any {
		return CommandResult{Success: false, Error: "nope"}
	})
	d.Register("after", func(hc *HandlerContext, args []string, stdin string) any {
		secondCalled = true
		return "should not run"
	})

	result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: "fail"}, {Name: "after"}})
	if result.Success || result.Error != "nope" {
		t.Fatalf("got %+v", result)
	}
	if secondCalled {
		t.Fatalf("expected stage after a failure to never run")
	}
}

func TestPipelineFeedsStdinBetweenStages(t *testing.T) {
	d := testDispatcher()
	d.Register("producer", func(hc *HandlerContext, args []string, stdin string) any {
		return "hello"
	})
	var seenStdin string
	d.Register("consumer", func(hc *HandlerContext, args []string, stdin string) any {
		seenStdin = stdin
		return stdin + " world"
	})

	result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: "producer"}, {Name: "consumer"}})
	if seenStdin != "hello" {
		t.Fatalf("expected consumer to see producer's output, got %q", seenStdin)
	}
	if result.Output != "hello world" {
		t.Fatalf("got output %q", result.Output)
	}
}

func TestCommandNameIsCaseInsensitive(t *testing.T) {
	d := testDispatcher()
	d.Register("echo", func(hc *HandlerContext, args []string, stdin string) any {
		return "ran"
	})
	result := d.ExecutePipeline([]shellsyntax.ParsedCommand{{Name: "ECHO"}})
	if !result.Success || result.Output != "ran" {
		t.Fatalf("got %+v", result)
	}
}
