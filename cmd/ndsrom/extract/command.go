// Package extract implements the `extract` command, writing the contents of
// a ROM into a directory.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/helper"
	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/internal/output"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/ndstoolkit/ndsrom/pkg/storage"
	"github.com/urfave/cli/v3"
)

func Command(_, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "extracts the header, executables, overlays and file tree of a ROM into a directory",
		ArgsUsage: "<rom> <output directory>",
		Flags: append(helper.BuildCommonFlags(),
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "number of files to write at once, 0 for one per CPU",
				Action: func(_ context.Context, _ *cli.Command, n int) error {
					if n < 0 {
						return fmt.Errorf("--jobs must not be negative, got %d", n)
					}

					return nil
				},
			},
			&cli.BoolFlag{
				Name:  "sequential",
				Usage: "write one file at a time",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "extract into the output directory even if it is not empty",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return action(ctx, cmd, stderr)
		},
	}
}

func action(ctx context.Context, cmd *cli.Command, stderr io.Writer) error {
	if err := helper.ExpectArgs(cmd, 2, 2); err != nil {
		return err
	}
	romPath, outDir := cmd.Args().Get(0), cmd.Args().Get(1)

	cfg, err := helper.LoadConfig(cmd, romPath)
	if err != nil {
		return err
	}

	jobs := cfg.Jobs
	if cmd.IsSet("jobs") {
		jobs = cmd.Int("jobs")
	}

	target := storage.NewDir(outDir)
	if !cfg.Overwrite && !cmd.Bool("overwrite") {
		if err := target.CheckEmpty(); err != nil {
			return fmt.Errorf("%s: %w, use --overwrite to extract anyway", outDir, err)
		}
	}

	rom, err := helper.OpenROM(cmd, romPath, cfg)
	if err != nil {
		return err
	}
	defer rom.Close()

	progress := nds.NewProgress()
	opts := []nds.ExtractOption{nds.WithJobs(jobs), nds.WithProgress(progress)}
	if cfg.Sequential || cmd.Bool("sequential") {
		opts = append(opts, nds.WithSequential())
	}

	// the line is written straight to stderr, subscribers run on the
	// extraction's goroutines
	var line *output.ProgressLine
	if slog.Default().Enabled(ctx, slog.LevelInfo) {
		line = output.NewProgressLine(stderr)
		cancel := progress.Subscribe(line.Update)
		defer cancel()
	}

	err = rom.Extract(ctx, target, opts...)
	if line != nil {
		line.Done()
	}

	snap := progress.Snapshot()
	cmdlogger.Infof("Extracted %d of %d files from %s into %s", snap.Completed, snap.Total, romPath, outDir)

	return err
}
