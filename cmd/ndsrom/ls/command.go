// Package ls implements the `ls` command, listing virtual paths of a ROM
// without extracting it.
package ls

import (
	"context"
	"io"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/helper"
	"github.com/ndstoolkit/ndsrom/internal/output"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/urfave/cli/v3"
)

func Command(stdout, _ io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "lists a directory of a ROM, / being the directory holding data, overlay and the other roots",
		ArgsUsage: "<rom> [virtual path]",
		Flags: append(helper.BuildCommonFlags(),
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "print the whole subtree of the directory",
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			return action(cmd, stdout)
		},
	}
}

func action(cmd *cli.Command, stdout io.Writer) error {
	if err := helper.ExpectArgs(cmd, 1, 2); err != nil {
		return err
	}
	romPath := cmd.Args().Get(0)
	dir := "/"
	if cmd.Args().Len() == 2 {
		dir = cmd.Args().Get(1)
	}

	cfg, err := helper.LoadConfig(cmd, romPath)
	if err != nil {
		return err
	}

	rom, err := helper.OpenROM(cmd, romPath, cfg)
	if err != nil {
		return err
	}
	defer rom.Close()

	entry, err := rom.VFS().Stat(dir)
	if err != nil {
		return err
	}

	if cmd.Bool("recursive") && entry.Dir {
		return output.PrintTree(rom, entry.Path, stdout)
	}

	entries := []nds.Entry{entry}
	if entry.Dir {
		if entries, err = rom.ReadDir(entry.Path); err != nil {
			return err
		}
	}
	output.PrintListing(entries, stdout, output.TerminalWidth(stdout))

	return nil
}
