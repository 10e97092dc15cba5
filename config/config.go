// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config holds the operator supplied configuration for a backup
// run.
package config

import (
	"time"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/canonical/juju-backup-all/backup"
)

// DefaultTimeout bounds each remote task when the operator does not
// override it.
const DefaultTimeout = 10 * time.Minute

// DefaultOutputDir is where backups land when no directory is given.
const DefaultOutputDir = "juju-backups"

// Config describes one backup run.
type Config struct {
	// Controllers lists the controllers to back up. Empty with
	// AllControllers unset means the current controller.
	Controllers []string

	// AllControllers selects every controller known to the local client.
	AllControllers bool

	// BackupController enables the controller state backup per controller.
	BackupController bool

	// BackupClientConfig enables the local client configuration backup.
	BackupClientConfig bool

	// ExcludedCharms removes charm kinds from the supported set.
	ExcludedCharms []string

	// OutputDir is the base directory artifacts are downloaded into.
	OutputDir string

	// Timeout bounds each individual remote task.
	Timeout time.Duration

	// Remote base directories per charm kind; zero values use the
	// defaults from the backup package.
	MysqlBasedir      string
	PostgresqlBasedir string
	EtcdBasedir       string
}

// Validate checks the configuration is coherent.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.NotValidf("empty output directory")
	}
	if c.AllControllers && len(c.Controllers) > 0 {
		return errors.NotValidf("both --all-controllers and explicit controllers")
	}
	if c.Timeout <= 0 {
		return errors.NotValidf("timeout %v", c.Timeout)
	}
	supported := set.NewStrings(backup.SupportedCharms...)
	for _, charmName := range c.ExcludedCharms {
		if !supported.Contains(charmName) {
			return errors.NotValidf("excluding unsupported charm %q", charmName)
		}
	}
	return nil
}

// AppsToBackup returns the charm kinds in scope for this run: every
// supported kind minus the exclusions.
func (c Config) AppsToBackup() set.Strings {
	return set.NewStrings(backup.SupportedCharms...).Difference(set.NewStrings(c.ExcludedCharms...))
}

// Paths returns the remote base directory overrides.
func (c Config) Paths() backup.Paths {
	return backup.Paths{
		MysqlBasedir:      c.MysqlBasedir,
		PostgresqlBasedir: c.PostgresqlBasedir,
		EtcdBasedir:       c.EtcdBasedir,
	}
}
