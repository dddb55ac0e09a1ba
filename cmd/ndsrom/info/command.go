// Package info implements the `info` command, printing the header of a ROM.
package info

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/helper"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/internal/output"
	"github.com/urfave/cli/v3"
)

func Command(stdout, _ io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "prints the header, table locations and content counts of a ROM",
		ArgsUsage: "<rom>",
		Flags: append(helper.BuildCommonFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "sets the output format; value can be: " + strings.Join(output.Formats(), ", "),
				Value:   "table",
				Action: func(_ context.Context, _ *cli.Command, s string) error {
					if !slices.Contains(output.Formats(), s) {
						return fmt.Errorf("unsupported output format \"%s\" - must be one of: %s", s, strings.Join(output.Formats(), ", "))
					}
					if s != "table" {
						cmdlogger.SendEverythingToStderr()
					}

					return nil
				},
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			return action(cmd, stdout)
		},
	}
}

func action(cmd *cli.Command, stdout io.Writer) error {
	if err := helper.ExpectArgs(cmd, 1, 1); err != nil {
		return err
	}
	path := cmd.Args().First()

	cfg, err := helper.LoadConfig(cmd, path)
	if err != nil {
		return err
	}

	rom, err := helper.OpenROM(cmd, path, cfg)
	if err != nil {
		return err
	}
	defer rom.Close()

	info, err := output.NewInfo(path, rom)
	if err != nil {
		return err
	}

	return output.PrintInfo(info, cmd.String("format"), stdout, output.TerminalWidth(stdout))
}
