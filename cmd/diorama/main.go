package main

import (
	"os"
	"runtime"
)

// GLFW and the surface must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
