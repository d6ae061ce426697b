package main

import (
	"runtime"

	"github.com/Marceswan/driftpaper/cmd/driftpaper/commands"
)

func init() {
	// Window and GPU calls must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	commands.Execute()
}
