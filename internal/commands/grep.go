package commands

import (
	"fmt"
	"regexp"
	"strings"

	"convfs/internal/dispatch"
)

// Grep implements the grep handler.
func Grep(hc *dispatch.HandlerContext, args []string, stdin string) any {
	caseInsensitive := false
	showLineNumbers := false
	var positional []string

	for _, a := range args {
		switch a {
		case "-i":
			caseInsensitive = true
		case "-n":
			showLineNumbers = true
		default:
			positional = append(positional, a)
		}
	}

	if len(positional) == 0 {
		return fmt.Errorf("grep: missing pattern")
	}
	pattern := positional[0]

	expr := pattern
	if caseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("grep: invalid regular expression: %s", pattern)
	}

	source := stdin
	if len(positional) > 1 {
		out, err := catOne(hc, positional[1])
		if err != nil {
			return fmt.Errorf("grep: %s", strings.TrimPrefix(err.Error(), "cat: "))
		}
		source = out
	}

	var matched []string
	for i, line := range strings.Split(source, "\n") {
		if !re.MatchString(line) {
			continue
		}
		if showLineNumbers {
			matched = append(matched, fmt.Sprintf("%d:%s", i+1, line))
		} else {
			matched = append(matched, line)
		}
	}

	if len(matched) == 0 {
		return ""
	}
	return strings.Join(matched, "\n") + "\n"
}
