package commands

import (
	"strings"

	"convfs/internal/dispatch"
)

// Echo joins args with a single space and appends a trailing newline.
// Variable expansion has already happened in the shell parser.
func Echo(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return strings.Join(args, " ") + "\n"
}
