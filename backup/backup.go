// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package backup implements the per-charm backup protocols, the controller
// state backup and the local client configuration backup. Each supported
// charm kind has its own CharmBackup implementation that knows how to
// trigger a backup on the application's leader unit and how to relocate
// the resulting artifact to local storage.
package backup

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/juju-backup-all/juju"
)

var logger = loggo.GetLogger("jujubackupall.backup")

// Charm kinds with a backup implementation.
const (
	MysqlInnodbCharm    = "mysql-innodb-cluster"
	PerconaClusterCharm = "percona-cluster"
	EtcdCharm           = "etcd"
	PostgresqlCharm     = "postgresql"
)

// SupportedCharms lists the charm kinds ForCharm accepts.
var SupportedCharms = []string{
	MysqlInnodbCharm,
	PerconaClusterCharm,
	EtcdCharm,
	PostgresqlCharm,
}

// Default artifact locations on the remote units.
const (
	DefaultMysqlBasedir      = "/var/backups/mysql"
	DefaultPostgresqlBasedir = "/home/ubuntu"
	DefaultEtcdBasedir       = "/home/ubuntu/etcd-snapshots"
)

// Artifact identifies a backup produced on a unit that has not yet been
// retrieved. A Backup call that succeeds yields a valid Artifact;
// DownloadBackup requires one, which makes "download before backup" a
// structural impossibility rather than an ordering convention.
type Artifact struct {
	// RemotePath is the absolute path of the artifact on the unit.
	RemotePath string
}

// Valid reports whether the artifact identifies a remote file.
func (a Artifact) Valid() bool {
	return a.RemotePath != ""
}

// CharmBackup is the two-phase backup protocol every charm kind
// implements: trigger the remote backup, then retrieve what it produced.
type CharmBackup interface {
	// Backup triggers the charm's backup mechanism on the unit and returns
	// the artifact it produced.
	Backup(ctx context.Context) (Artifact, error)

	// DownloadBackup copies the artifact produced by Backup into destDir,
	// removes the remote copy, and returns the absolute local path.
	DownloadBackup(ctx context.Context, artifact Artifact, destDir string) (string, error)
}

// Paths carries the per-charm-kind base directories for artifacts on the
// remote units. Zero values fall back to the defaults above.
type Paths struct {
	MysqlBasedir      string
	PostgresqlBasedir string
	EtcdBasedir       string
}

func (p Paths) withDefaults() Paths {
	if p.MysqlBasedir == "" {
		p.MysqlBasedir = DefaultMysqlBasedir
	}
	if p.PostgresqlBasedir == "" {
		p.PostgresqlBasedir = DefaultPostgresqlBasedir
	}
	if p.EtcdBasedir == "" {
		p.EtcdBasedir = DefaultEtcdBasedir
	}
	return p
}

// ForCharm returns the CharmBackup implementation matching the charm kind.
// An unknown kind is a configuration error and fails immediately.
func ForCharm(charmName string, unit juju.Unit, paths Paths, timeout time.Duration) (CharmBackup, error) {
	paths = paths.withDefaults()
	switch charmName {
	case MysqlInnodbCharm:
		return newMysqlInnodbBackup(unit, paths.MysqlBasedir, timeout), nil
	case PerconaClusterCharm:
		return newPerconaClusterBackup(unit, paths.MysqlBasedir, timeout), nil
	case EtcdCharm:
		return newEtcdBackup(unit, paths.EtcdBasedir, timeout), nil
	case PostgresqlCharm:
		return newPostgresqlBackup(unit, paths.PostgresqlBasedir, timeout), nil
	}
	return nil, errors.NotSupportedf("backing up charm %q", charmName)
}

// utcTimestamp names backup files; patched in tests.
var utcTimestamp = func() string {
	return time.Now().UTC().Format("20060102-150405")
}

func ensureDir(path string) error {
	return errors.Trace(os.MkdirAll(path, 0755))
}

// moveFile relocates a local file, falling back to copy-and-remove when a
// rename crosses filesystems.
func moveFile(source, destination string) error {
	if err := os.Rename(source, destination); err == nil {
		return nil
	}
	in, err := os.Open(source)
	if err != nil {
		return errors.Trace(err)
	}
	defer in.Close()
	out, err := os.Create(destination)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Trace(err)
	}
	if err := out.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Remove(source))
}
