package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port out of range: %d", c.UI.Port))
	}
	if c.UI.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("ui.idle_timeout must not be negative, got %s", c.UI.IdleTimeout))
	}
	if c.View.PageSize < 1 {
		errs = append(errs, fmt.Errorf("view.page_size must be positive, got %d", c.View.PageSize))
	}
	if c.View.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("view.refresh_interval must not be negative, got %s", c.View.RefreshInterval))
	}
	if c.View.Theme != "" && !core.Theme(c.View.Theme).Valid() {
		errs = append(errs, fmt.Errorf("view.theme %q is not one of %s, %s", c.View.Theme, core.ThemeRose, core.ThemeVeil))
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative, got %s", c.Fetch.Timeout))
	}
	return errors.Join(errs...)
}

// ValidateDataDir checks that the data directory exists.
func (c *Config) ValidateDataDir() error {
	fi, err := os.Stat(c.DataDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s\nHint: Create the directory or use --data-dir to specify a different path", c.DataDir)
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("data directory is not a directory: %s", c.DataDir)
	}
	return nil
}
