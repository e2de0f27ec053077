package commands

import "convfs/internal/dispatch"

// Pwd ignores args and stdin; it returns the current VFS cwd.
func Pwd(hc *dispatch.HandlerContext, args []string, stdin string) any {
	return cwd(hc) + "\n"
}
