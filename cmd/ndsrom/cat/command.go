// Package cat implements the `cat` command, copying one file out of a ROM.
package cat

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/helper"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/urfave/cli/v3"
)

func Command(stdout, _ io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "writes the contents of a file of a ROM to stdout or to --output",
		ArgsUsage: "<rom> <virtual path>",
		Flags: append(helper.BuildCommonFlags(),
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "write to this file instead of stdout",
				TakesFile: true,
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			return action(cmd, stdout)
		},
	}
}

func action(cmd *cli.Command, stdout io.Writer) (err error) {
	if err := helper.ExpectArgs(cmd, 2, 2); err != nil {
		return err
	}
	romPath, vpath := cmd.Args().Get(0), cmd.Args().Get(1)

	outputPath := cmd.String("output")
	if outputPath == "" {
		// stdout carries the file, keep log lines out of it
		cmdlogger.SendEverythingToStderr()
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

	rg, err := rom.Resolve(vpath)
	if err != nil {
		return err
	}

	r, err := rom.SectionReader(rg)
	if err != nil {
		return err
	}

	w := stdout
	if outputPath != "" {
		f, ferr := os.Create(outputPath)
		if ferr != nil {
			return fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := io.Copy(w, r)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", vpath, err)
	}
	cmdlogger.Debugf("Wrote %d bytes of %s", n, vpath)
	if outputPath != "" {
		cmdlogger.Infof("Wrote %s (%d bytes) to %s", vpath, n, outputPath)
	}

	return nil
}
