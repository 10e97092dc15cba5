// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"context"
	"path/filepath"
	"time"

	"github.com/juju/errors"

	"github.com/canonical/juju-backup-all/juju"
)

// downloadArtifact is the shared retrieval path: ensure the destination
// directory exists, copy the artifact off the unit, remove the remote
// copy, and return the local path. Variants that need a staging step run
// it before delegating here.
func downloadArtifact(ctx context.Context, unit juju.Unit, artifact Artifact, destDir string, timeout time.Duration) (string, error) {
	if !artifact.Valid() {
		return "", errors.NotValidf("download of artifact without a remote path")
	}
	if err := ensureDir(destDir); err != nil {
		return "", errors.Annotatef(err, "creating %q", destDir)
	}
	if err := juju.CopyFromUnit(ctx, unit, artifact.RemotePath, destDir, timeout); err != nil {
		return "", errors.Trace(err)
	}
	rmCommand := "sudo rm " + artifact.RemotePath
	if err := juju.RunCommandOnUnit(ctx, unit, rmCommand, "ubuntu", timeout); err != nil {
		return "", errors.Trace(err)
	}
	localPath, err := filepath.Abs(filepath.Join(destDir, filepath.Base(artifact.RemotePath)))
	if err != nil {
		return "", errors.Trace(err)
	}
	return localPath, nil
}
