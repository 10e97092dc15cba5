// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/juju/clock"
	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"

	"github.com/canonical/juju-backup-all/config"
	"github.com/canonical/juju-backup-all/jujucli"
	"github.com/canonical/juju-backup-all/process"
	"github.com/canonical/juju-backup-all/tracker"
)

const backupAllDoc = `
juju-backup-all backs up the local juju client configuration, the
supported applications of every model in scope, and optionally the
controllers themselves. Backups are written below the output directory,
one subdirectory per controller, model and application, and a JSON
report of everything that was (and was not) backed up is printed when
the run finishes.

Supported charms: mysql-innodb-cluster, percona-cluster, etcd and
postgresql. Failures against one application are recorded in the report
and do not stop the rest of the run.

Examples:
    juju-backup-all
    juju-backup-all -A -o /srv/backups
    juju-backup-all -c prod-us -c prod-eu -e postgresql -x
`

type backupAllCommand struct {
	cmd.CommandBase

	config   config.Config
	logLevel string

	excludeControllerBackup   bool
	excludeClientConfigBackup bool
}

func (c *backupAllCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "juju-backup-all",
		Purpose: "back up juju controllers, models and client configuration",
		Doc:     backupAllDoc,
	}
}

func (c *backupAllCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.config.OutputDir, "o", config.DefaultOutputDir, "directory to place backups in")
	f.StringVar(&c.config.OutputDir, "output-dir", config.DefaultOutputDir, "")
	f.Var(cmd.NewAppendStringsValue(&c.config.ExcludedCharms), "e", "charm to exclude from application backups (repeatable)")
	f.Var(cmd.NewAppendStringsValue(&c.config.ExcludedCharms), "exclude-charm", "")
	f.BoolVar(&c.excludeControllerBackup, "x", false, "skip the controller state backups")
	f.BoolVar(&c.excludeControllerBackup, "exclude-controller-backup", false, "")
	f.BoolVar(&c.excludeClientConfigBackup, "j", false, "skip the local juju client configuration backup")
	f.BoolVar(&c.excludeClientConfigBackup, "exclude-juju-client-config-backup", false, "")
	f.Var(cmd.NewAppendStringsValue(&c.config.Controllers), "c", "controller to back up (repeatable)")
	f.Var(cmd.NewAppendStringsValue(&c.config.Controllers), "controller", "")
	f.BoolVar(&c.config.AllControllers, "A", false, "back up every controller the client knows")
	f.BoolVar(&c.config.AllControllers, "all-controllers", false, "")
	f.DurationVar(&c.config.Timeout, "t", config.DefaultTimeout, "timeout for each remote backup task")
	f.DurationVar(&c.config.Timeout, "timeout", config.DefaultTimeout, "")
	f.StringVar(&c.logLevel, "log-level", "WARNING", "log level, one of [TRACE, DEBUG, INFO, WARNING, ERROR]")
}

func (c *backupAllCommand) Init(args []string) error {
	if _, ok := loggo.ParseLevel(c.logLevel); !ok {
		return errors.NotValidf("log level %q", c.logLevel)
	}
	c.config.BackupController = !c.excludeControllerBackup
	c.config.BackupClientConfig = !c.excludeClientConfigBackup
	if err := c.config.Validate(); err != nil {
		return errors.Trace(err)
	}
	return cmd.CheckEmpty(args)
}

func (c *backupAllCommand) Run(ctx *cmd.Context) error {
	if err := loggo.ConfigureLoggers("jujubackupall=" + c.logLevel); err != nil {
		return errors.Trace(err)
	}

	processor := process.NewBackupProcessor(
		c.config, jujucli.NewConnector(), tracker.New(), clock.WallClock)

	started := time.Now()
	report, err := processor.ProcessBackups(context.Background())
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("backup run finished in %s", time.Since(started).Round(time.Second))

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Annotate(err, "rendering backup report")
	}
	fmt.Fprintln(ctx.Stdout, string(out))
	return nil
}

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(&backupAllCommand{}, ctx, os.Args[1:]))
}
