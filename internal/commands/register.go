package commands

import "convfs/internal/dispatch"

// Register binds every command handler to d, matching the closed
// vocabulary shellsyntax.IsShellCommand recognizes.
func Register(d *dispatch.Dispatcher) {
	d.Register("cd", Cd)
	d.Register("ls", Ls)
	d.Register("pwd", Pwd)
	d.Register("cat", Cat)
	d.Register("head", Head)
	d.Register("tail", Tail)
	d.Register("echo", Echo)
	d.Register("grep", Grep)
	d.Register("find", Find)
	d.Register("tree", Tree)
	d.Register("paths", Paths)

	d.Register("star", Star)
	d.Register("unstar", Unstar)
	d.Register("pin", Pin)
	d.Register("unpin", Unpin)
	d.Register("archive", Archive)
	d.Register("unarchive", Unarchive)
	d.Register("title", Title)

	d.Register("ln", Ln)
	d.Register("cp", Cp)
	d.Register("mv", Mv)
	d.Register("rm", Rm)
	d.Register("mkdir", Mkdir)

	d.Register("help", Help)
	d.Register("exit", Exit)
	d.Register("quit", Quit)
}
