package main

import (
	"os"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/cat"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/detect"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/extract"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/info"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/cmd"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/ls"
)

func main() {
	exitCode := cmd.Run(os.Args, os.Stdout, os.Stderr, []cmd.CommandBuilder{
		info.Command,
		extract.Command,
		ls.Command,
		cat.Command,
		detect.Command,
	})

	os.Exit(exitCode)
}
