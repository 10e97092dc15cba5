// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"

	"github.com/canonical/juju-backup-all/juju"
)

// maxControllerBackupAttempts bounds the retry of the controller state
// backup. Controller backups are flaky on busy controllers, so a couple of
// retries is worth the wait; after that the target is given up on.
const maxControllerBackupAttempts = 3

var controllerBackupRetryDelay = 10 * time.Second

// ControllerBackupError wraps the last error of an exhausted controller
// backup retry loop.
type ControllerBackupError struct {
	Attempts  int
	LastError error
}

// Error is part of the error interface.
func (e *ControllerBackupError) Error() string {
	return fmt.Sprintf("controller backup failed after %d attempts: %v", e.Attempts, e.LastError)
}

// IsControllerBackupError reports whether err was caused by an exhausted
// controller backup.
func IsControllerBackupError(err error) bool {
	_, ok := errors.Cause(err).(*ControllerBackupError)
	return ok
}

// ControllerBackup backs up a controller's own state into savePath.
type ControllerBackup struct {
	controller juju.Controller
	savePath   string
	clock      clock.Clock
}

// NewControllerBackup returns a ControllerBackup writing into savePath.
func NewControllerBackup(controller juju.Controller, savePath string, clk clock.Clock) *ControllerBackup {
	return &ControllerBackup{controller: controller, savePath: savePath, clock: clk}
}

// Backup creates a full state backup of the controller, retrying the
// platform operation up to maxControllerBackupAttempts times, and moves
// the downloaded archive into savePath. The absolute path of the archive
// is returned. If every attempt fails the last error is wrapped in a
// ControllerBackupError; the caller treats that as fatal for this one
// target only.
func (b *ControllerBackup) Backup(ctx context.Context) (string, error) {
	if err := ensureDir(b.savePath); err != nil {
		return "", errors.Annotatef(err, "creating %q", b.savePath)
	}
	destPath, err := filepath.Abs(filepath.Join(
		b.savePath, fmt.Sprintf("juju-controller-backup-%s.tar.gz", utcTimestamp())))
	if err != nil {
		return "", errors.Trace(err)
	}

	var archivePath string
	err = retry.Call(retry.CallArgs{
		Func: func() error {
			downloaded, meta, err := b.controller.CreateBackup(ctx)
			if err != nil {
				return err
			}
			logger.Debugf("controller %q produced backup %q on machine %s",
				b.controller.Name(), meta.Filename, meta.ControllerMachineID)
			archivePath = downloaded
			return nil
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Errorf("controller %q backup attempt %d failed: %v", b.controller.Name(), attempt, err)
		},
		Attempts: maxControllerBackupAttempts,
		Delay:    controllerBackupRetryDelay,
		Clock:    b.clock,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		return "", &ControllerBackupError{
			Attempts:  maxControllerBackupAttempts,
			LastError: retry.LastError(err),
		}
	}
	if err != nil {
		return "", errors.Trace(err)
	}

	if err := moveFile(archivePath, destPath); err != nil {
		return "", errors.Annotate(err, "relocating controller backup archive")
	}
	return destPath, nil
}
