package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/internal/testlogger"
	"github.com/ndstoolkit/ndsrom/internal/version"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/urfave/cli/v3"
)

var (
	commit = "n/a"
	date   = "n/a"
)

// DefaultCommand runs when the first argument is not a command.
const DefaultCommand = "info"

type CommandBuilder = func(stdout, stderr io.Writer) *cli.Command

// Run executes the ndsrom command line and returns the process exit code:
//
//	0   success
//	1   extraction finished but some files could not be written
//	2   the ROM is truncated, malformed or uses an unsupported encoding
//	3   a virtual path does not exist or is not valid
//	127 any other error that was logged
//	130 a config file was ignored because it is invalid
func Run(args []string, stdout, stderr io.Writer, commands []CommandBuilder) int {
	// urfave/cli uses a global for its help flag which makes it possible for a nil
	// pointer dereference if running in a parallel setting, which our test suite
	// does, so this is used to hide the help flag so the global won't be used
	// unless a particular env variable is set
	//
	// see https://github.com/urfave/cli/issues/2176
	shouldHideHelp := testing.Testing() && os.Getenv("TEST_SHOW_HELP") != "true"

	// --- Setup Logger ---
	logHandler := cmdlogger.New(stdout, stderr)

	// If in testing mode, set logger via Handler
	// Otherwise, set default global logger
	if testing.Testing() {
		handler, ok := slog.Default().Handler().(*testlogger.Handler)
		if !ok {
			panic("Test failed to initialize default logger with Handler")
		}

		handler.AddInstance(logHandler)
		defer handler.Delete()
	} else {
		slog.SetDefault(slog.New(logHandler))
	}
	// ---

	cli.VersionPrinter = func(cmd *cli.Command) {
		cmdlogger.Infof("ndsrom version: %s", cmd.Version)
		cmdlogger.Infof("commit: %s", commit)
		cmdlogger.Infof("built at: %s", date)
	}

	cmds := make([]*cli.Command, 0, len(commands))
	for _, cmd := range commands {
		c := cmd(stdout, stderr)
		c.HideHelp = shouldHideHelp

		cmds = append(cmds, c)
	}

	app := &cli.Command{
		Name:           "ndsrom",
		Version:        version.Version,
		Usage:          "inspects, browses and extracts Nintendo DS ROM images",
		Suggest:        true,
		HideHelp:       shouldHideHelp,
		Writer:         stdout,
		ErrWriter:      stderr,
		DefaultCommand: DefaultCommand,
		Commands:       cmds,

		CustomRootCommandHelpTemplate: getCustomHelpTemplate(),
	}

	// Without this cli.HandleExitCoder would exit the process for any error
	// that happens to have an ExitCode method.
	app.ExitErrHandler = func(_ context.Context, _ *cli.Command, _ error) {}

	args = insertDefaultCommand(args, app.Commands, app.DefaultCommand, stderr)

	err := app.Run(context.Background(), args)

	// if the config is invalid, it's possible that is why any other errors
	// happened so that exit code takes priority
	if logHandler.HasErroredBecauseInvalidConfig() {
		if err != nil {
			cmdlogger.Errorf("%v", err)
		}

		return 130
	}

	if err != nil {
		cmdlogger.Errorf("%v", err)

		var extractErr *nds.ExtractError
		switch {
		case errors.As(err, &extractErr):
			return 1
		case errors.Is(err, nds.ErrNotFound), errors.Is(err, nds.ErrInvalidPath):
			return 3
		case nds.IsStructural(err):
			return 2
		}
	}

	// if we've been told to print an error, and not already exited with
	// a specific error code, then exit with a generic non-zero code
	if logHandler.HasErrored() {
		return 127
	}

	return 0
}
