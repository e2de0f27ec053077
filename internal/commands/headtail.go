package commands

import (
	"fmt"
	"strconv"
	"strings"

	"convfs/internal/dispatch"
)

// Head implements the head handler.
func Head(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return headTail(hc, "head", args, stdin, true)
}

// Tail implements the tail handler.
func Tail(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return headTail(hc, "tail", args, stdin, false)
}

func headTail(hc *dispatch.HandlerContext, name string, args []string, stdin string, fromStart bool) any {
	n := 10
	var path string
	for _, a := range args {
		if v, err := strconv.Atoi(a); err == nil {
			n = v
			continue
		}
		path = a
	}

	content := stdin
	if path != "" {
		out, err := catOne(hc, path)
		if err != nil {
			return fmt.Errorf("%s: %s", name, strings.TrimPrefix(err.Error(), "cat: "))
		}
		content = out
	}

	return sliceLines(content, n, fromStart)
}

func sliceLines(content string, n int, fromStart bool) string {
	if n <= 0 {
		return ""
	}

	lines := strings.Split(content, "\n")
	// A trailing newline produces a final "" element; it is a line
	// terminator, not a line, and must not count against the window.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if fromStart {
		if n < len(lines) {
			lines = lines[:n]
		}
	} else if n < len(lines) {
		lines = lines[len(lines)-n:]
	}

	joined := strings.Join(lines, "\n")
	if joined == "" {
		return ""
	}
	if !strings.HasSuffix(joined, "\n") {
		joined += "\n"
	}
	return joined
}
