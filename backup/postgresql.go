// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/juju/errors"

	"github.com/canonical/juju-backup-all/juju"
)

// postgresqlBackup backs up the postgresql charm. The charm has no backup
// action; instead the dump is produced by running pg_dumpall on the unit,
// compressed straight to a timestamped file. Failure is only observable
// through the command's exit status.
type postgresqlBackup struct {
	unit    juju.Unit
	basedir string
	timeout time.Duration
}

func newPostgresqlBackup(unit juju.Unit, basedir string, timeout time.Duration) *postgresqlBackup {
	return &postgresqlBackup{unit: unit, basedir: basedir, timeout: timeout}
}

func (b *postgresqlBackup) Backup(ctx context.Context) (Artifact, error) {
	mkdirCommand := "mkdir -p " + b.basedir
	if err := juju.RunCommandOnUnit(ctx, b.unit, mkdirCommand, "ubuntu", b.timeout); err != nil {
		return Artifact{}, errors.Annotatef(err, "creating %q on unit %q", b.basedir, b.unit.Name())
	}
	dumpPath := path.Join(b.basedir, fmt.Sprintf("pg_dumpall-%s.gz", utcTimestamp()))
	dumpCommand := fmt.Sprintf("sudo -u postgres pg_dumpall | gzip > %s", dumpPath)
	if err := juju.RunCommandOnUnit(ctx, b.unit, dumpCommand, "ubuntu", b.timeout); err != nil {
		return Artifact{}, errors.Annotate(err, "dumping postgresql databases")
	}
	return Artifact{RemotePath: dumpPath}, nil
}

func (b *postgresqlBackup) DownloadBackup(ctx context.Context, artifact Artifact, destDir string) (string, error) {
	localPath, err := downloadArtifact(ctx, b.unit, artifact, destDir, b.timeout)
	return localPath, errors.Trace(err)
}
