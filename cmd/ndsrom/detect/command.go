// Package detect implements the `detect` command, telling NDS ROM images and
// extracted layouts apart from other files.
package detect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/helper"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/urfave/cli/v3"
)

// ErrNotDetected is returned when at least one path is neither a ROM nor an
// extracted layout.
var ErrNotDetected = errors.New("not every path is an NDS ROM or extracted layout")

func Command(_, _ io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "reports whether files are NDS ROMs, or directories extracted NDS layouts, with their game code",
		ArgsUsage: "<path> [path...]",
		Flags:     []cli.Flag{helper.VerbosityFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return action(cmd)
		},
	}
}

func action(cmd *cli.Command) error {
	if err := helper.ExpectArgs(cmd, 1, cmd.Args().Len()); err != nil {
		return err
	}

	var missed bool
	for _, p := range cmd.Args().Slice() {
		kind, code, err := detect(p)
		if err != nil {
			return err
		}

		if kind == "" {
			cmdlogger.Warnf("%s: not an NDS ROM or extracted layout", p)
			missed = true

			continue
		}
		cmdlogger.Infof("%s: %s, game code %s", p, kind, code)
	}

	if missed {
		return ErrNotDetected
	}

	return nil
}

// detect returns what kind of NDS content path holds, "" for none, and its
// game code.
func detect(path string) (string, string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}

	if st.IsDir() {
		fsys := os.DirFS(path)
		if !nds.IsExtractedDir(fsys) {
			return "", "", nil
		}

		code, err := nds.DirGameCode(fsys)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", path, err)
		}

		return "extracted NDS layout", code, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	if !nds.IsROM(f) {
		return "", "", nil
	}

	h, err := nds.ReadHeader(f, st.Size())
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}

	return "NDS ROM", h.GameCode, nil
}
