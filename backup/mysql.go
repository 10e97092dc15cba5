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

const (
	mysqldumpAction     = "mysqldump"
	mysqldumpResultKey  = "mysqldump-file"
	pxcStrictModeAction = "set-pxc-strict-mode"
	pxcModeMaster       = "MASTER"
	pxcModeEnforcing    = "ENFORCING"
)

// mysqlBackup is the mechanism shared by the MySQL flavoured charms: a
// single mysqldump action produces a dump file whose path comes back in
// the action results. The dump is written by the mysql user, so retrieval
// stages it through /tmp with an ownership fixup before it can be copied
// off the unit.
type mysqlBackup struct {
	unit    juju.Unit
	basedir string
	timeout time.Duration
}

func (b *mysqlBackup) Backup(ctx context.Context) (Artifact, error) {
	params := map[string]interface{}{"basedir": b.basedir}
	results, err := juju.RunActionChecked(ctx, b.unit, mysqldumpAction, params, b.timeout)
	if err != nil {
		return Artifact{}, errors.Trace(err)
	}
	dumpPath, ok := results[mysqldumpResultKey].(string)
	if !ok || dumpPath == "" {
		return Artifact{}, errors.NotFoundf("%q in mysqldump results %v", mysqldumpResultKey, results)
	}
	return Artifact{RemotePath: dumpPath}, nil
}

func (b *mysqlBackup) DownloadBackup(ctx context.Context, artifact Artifact, destDir string) (string, error) {
	if !artifact.Valid() {
		return "", errors.NotValidf("download of artifact without a remote path")
	}
	stagedPath := path.Join("/tmp", path.Base(artifact.RemotePath))
	stageCommand := fmt.Sprintf("sudo cp %s /tmp && sudo chown ubuntu:ubuntu %s", artifact.RemotePath, stagedPath)
	if err := juju.RunCommandOnUnit(ctx, b.unit, stageCommand, "ubuntu", b.timeout); err != nil {
		return "", errors.Annotate(err, "staging mysqldump file")
	}
	localPath, err := downloadArtifact(ctx, b.unit, Artifact{RemotePath: stagedPath}, destDir, b.timeout)
	if err != nil {
		return "", errors.Trace(err)
	}
	rmCommand := "sudo rm " + artifact.RemotePath
	if err := juju.RunCommandOnUnit(ctx, b.unit, rmCommand, "ubuntu", b.timeout); err != nil {
		return "", errors.Annotate(err, "removing remote mysqldump file")
	}
	return localPath, nil
}

// mysqlInnodbBackup backs up the mysql-innodb-cluster charm.
type mysqlInnodbBackup struct {
	mysqlBackup
}

func newMysqlInnodbBackup(unit juju.Unit, basedir string, timeout time.Duration) *mysqlInnodbBackup {
	return &mysqlInnodbBackup{mysqlBackup{unit: unit, basedir: basedir, timeout: timeout}}
}

// perconaClusterBackup backs up the percona-cluster charm. The dump only
// works with the PXC strict mode relaxed, so the dump is bracketed by
// set-pxc-strict-mode actions. The mode is restored to ENFORCING on every
// exit path: a failed dump must not leave the cluster permissive.
type perconaClusterBackup struct {
	mysqlBackup
}

func newPerconaClusterBackup(unit juju.Unit, basedir string, timeout time.Duration) *perconaClusterBackup {
	return &perconaClusterBackup{mysqlBackup{unit: unit, basedir: basedir, timeout: timeout}}
}

func (b *perconaClusterBackup) Backup(ctx context.Context) (Artifact, error) {
	if err := b.setStrictMode(ctx, pxcModeMaster); err != nil {
		return Artifact{}, errors.Trace(err)
	}
	artifact, backupErr := b.mysqlBackup.Backup(ctx)
	if err := b.setStrictMode(ctx, pxcModeEnforcing); err != nil {
		if backupErr == nil {
			return Artifact{}, errors.Trace(err)
		}
		logger.Errorf("restoring pxc strict mode on unit %q: %v", b.unit.Name(), err)
	}
	if backupErr != nil {
		return Artifact{}, errors.Trace(backupErr)
	}
	return artifact, nil
}

func (b *perconaClusterBackup) setStrictMode(ctx context.Context, mode string) error {
	params := map[string]interface{}{"mode": mode}
	_, err := juju.RunActionChecked(ctx, b.unit, pxcStrictModeAction, params, b.timeout)
	return errors.Annotatef(err, "setting pxc strict mode to %s", mode)
}
