// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/canonical/juju-backup-all/juju"
)

const snapshotAction = "snapshot"

// etcdBackup backs up the etcd charm. The snapshot action leaves a
// world-readable archive under the target directory and reports its path
// nested in the results, so retrieval needs no staging step.
type etcdBackup struct {
	unit    juju.Unit
	basedir string
	timeout time.Duration
}

func newEtcdBackup(unit juju.Unit, basedir string, timeout time.Duration) *etcdBackup {
	return &etcdBackup{unit: unit, basedir: basedir, timeout: timeout}
}

func (b *etcdBackup) Backup(ctx context.Context) (Artifact, error) {
	params := map[string]interface{}{"target": b.basedir}
	results, err := juju.RunActionChecked(ctx, b.unit, snapshotAction, params, b.timeout)
	if err != nil {
		return Artifact{}, errors.Trace(err)
	}
	snapshot, ok := results["snapshot"].(map[string]interface{})
	if !ok {
		return Artifact{}, errors.NotFoundf("%q in snapshot results %v", "snapshot", results)
	}
	snapshotPath, ok := snapshot["path"].(string)
	if !ok || snapshotPath == "" {
		return Artifact{}, errors.NotFoundf("snapshot path in results %v", results)
	}
	return Artifact{RemotePath: snapshotPath}, nil
}

func (b *etcdBackup) DownloadBackup(ctx context.Context, artifact Artifact, destDir string) (string, error) {
	localPath, err := downloadArtifact(ctx, b.unit, artifact, destDir, b.timeout)
	return localPath, errors.Trace(err)
}
