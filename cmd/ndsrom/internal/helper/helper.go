// Package helper holds the flags and setup shared by the ndsrom commands.
package helper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/internal/config"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/urfave/cli/v3"
)

// ErrArgs is returned when a command gets the wrong number of arguments.
var ErrArgs = errors.New("wrong number of arguments, see --help for usage")

// VerbosityFlag selects the lowest level that is logged.
func VerbosityFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "verbosity",
		Usage: "specify the level of information that should be provided during runtime; value can be: " + strings.Join(cmdlogger.Levels(), ", "),
		Value: "info",
		Action: func(_ context.Context, _ *cli.Command, s string) error {
			lvl, err := cmdlogger.ParseLevel(s)
			if err != nil {
				return err
			}

			cmdlogger.SetLevel(lvl)

			return nil
		},
	}
}

// BuildCommonFlags returns the flags of every command that opens a ROM
func BuildCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      "config",
			Usage:     "set/override config file",
			TakesFile: true,
		},
		VerbosityFlag(),
		&cli.BoolFlag{
			Name:  "no-mmap",
			Usage: "read the ROM with positional reads instead of memory mapping it",
		},
	}
}

// ExpectArgs fails with ErrArgs unless cmd got between min and max
// positional arguments.
func ExpectArgs(cmd *cli.Command, minArgs, maxArgs int) error {
	if n := cmd.Args().Len(); n < minArgs || n > maxArgs {
		return fmt.Errorf("%s: %w", cmd.Name, ErrArgs)
	}

	return nil
}

// LoadConfig returns the config for target: the file given by --config, or
// the ndsrom.toml next to target. A config verbosity applies unless the
// --verbosity flag was given.
func LoadConfig(cmd *cli.Command, target string) (config.Config, error) {
	manager := config.NewManager()

	if p := cmd.String("config"); p != "" {
		if err := manager.UseOverride(p); err != nil {
			return config.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := manager.Get(target)
	if cfg.Verbosity != "" && !cmd.IsSet("verbosity") {
		lvl, err := cmdlogger.ParseLevel(cfg.Verbosity)
		if err != nil {
			return config.Config{}, err
		}
		cmdlogger.SetLevel(lvl)
	}

	return cfg, nil
}

// OpenROM opens the ROM at path, memory mapped unless --no-mmap is set,
// with the resolver cache sized by cfg.
func OpenROM(cmd *cli.Command, path string, cfg config.Config) (*nds.ROM, error) {
	var opts []nds.ResolverOption
	if cfg.CacheSize != nil {
		opts = append(opts, nds.WithCacheSize(*cfg.CacheSize))
	}

	if cmd.Bool("no-mmap") {
		return nds.OpenFileNoMmap(path, opts...)
	}

	return nds.OpenFile(path, opts...)
}
