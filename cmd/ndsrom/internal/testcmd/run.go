package testcmd

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/cmd"
	"github.com/ndstoolkit/ndsrom/internal/testutility"
	"github.com/urfave/cli/v3"
)

// CommandsUnderTest should be set in TestMain by every cmd package test
var CommandsUnderTest []cmd.CommandBuilder

// fetchCommandsToTest returns the commands that should be tested, ensuring that
// the default command is included to avoid a panic
func fetchCommandsToTest() []cmd.CommandBuilder {
	for _, builder := range CommandsUnderTest {
		if builder(nil, nil).Name == cmd.DefaultCommand {
			return CommandsUnderTest
		}
	}

	return append(CommandsUnderTest, func(_, _ io.Writer) *cli.Command {
		return &cli.Command{
			Name: cmd.DefaultCommand,
			Action: func(_ context.Context, _ *cli.Command) error {
				return errors.New("<this test is unexpectedly calling the default command>")
			},
		}
	})
}

// Run executes tc and returns what was written to stdout and stderr.
func Run(t *testing.T, tc Case) (string, string) {
	t.Helper()

	stdout := &lockedBuffer{}
	stderr := &lockedBuffer{}

	ec := cmd.Run(tc.Args, stdout, stderr, fetchCommandsToTest())

	if ec != tc.Exit {
		t.Errorf("cli exited with code %d, not %d", ec, tc.Exit)
	}

	return stdout.String(), stderr.String()
}

func RunAndMatchSnapshots(t *testing.T, tc Case) {
	t.Helper()

	stdout, stderr := Run(t, tc)

	snapshot := testutility.NewSnapshot().WithReplacements(tc.Replacements)

	if tc.isOutputtingJSON() {
		snapshot.MatchJSON(t, stdout, tc.ReplaceRules...)
	} else {
		snapshot.MatchText(t, stdout)
	}
	snapshot.MatchText(t, stderr)
}
