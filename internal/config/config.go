// Package config loads the optional ndsrom.toml file holding defaults for
// the command line flags.
package config

import (
	"errors"
	"fmt"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
)

var ConfigName = "ndsrom.toml"

type Config struct {
	// Jobs caps the number of files extracted at once, 0 meaning one per CPU
	Jobs       int  `toml:"Jobs,omitempty"`
	Sequential bool `toml:"Sequential,omitempty"`
	// Overwrite allows extracting into a directory that is not empty
	Overwrite bool `toml:"Overwrite,omitempty"`
	// CacheSize is the number of resolved virtual paths kept, 0 disabling the
	// cache. nil keeps the default.
	CacheSize *int   `toml:"CacheSize,omitempty"`
	Verbosity string `toml:"Verbosity,omitempty"`

	// The path to config file that this config was loaded from,
	// set by the manager after having successfully parsed the file
	LoadPath string `toml:"-"`
}

// Validate rejects values no flag would accept.
func (c Config) Validate() error {
	var errs []error

	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("Jobs must not be negative, got %d", c.Jobs))
	}
	if c.CacheSize != nil && *c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("CacheSize must not be negative, got %d", *c.CacheSize))
	}
	if c.Verbosity != "" {
		if _, err := cmdlogger.ParseLevel(c.Verbosity); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
