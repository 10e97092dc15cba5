// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"context"
	"path/filepath"
	"time"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/juju-backup-all/juju"
)

type mysqlSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&mysqlSuite{})

func (s *mysqlSuite) TestInnodbBackup(c *gc.C) {
	unit := &stubUnit{
		name: "mysql/0",
		actions: map[string]func(map[string]interface{}) (juju.ActionResult, error){
			mysqldumpAction: func(params map[string]interface{}) (juju.ActionResult, error) {
				return completedResult(mysqldumpAction, "mysql/0",
					map[string]interface{}{mysqldumpResultKey: "/var/backups/mysql/mysqldump-all.gz"}), nil
			},
		},
	}
	b := newMysqlInnodbBackup(unit, "/var/backups/mysql", time.Minute)
	artifact, err := b.Backup(context.Background())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(artifact.RemotePath, gc.Equals, "/var/backups/mysql/mysqldump-all.gz")
	c.Check(unit.ops, jc.DeepEquals, []string{"action mysqldump"})
}

func (s *mysqlSuite) TestInnodbBackupMissingResultPath(c *gc.C) {
	unit := &stubUnit{
		name: "mysql/0",
		actions: map[string]func(map[string]interface{}) (juju.ActionResult, error){
			mysqldumpAction: func(params map[string]interface{}) (juju.ActionResult, error) {
				return completedResult(mysqldumpAction, "mysql/0", nil), nil
			},
		},
	}
	b := newMysqlInnodbBackup(unit, "/var/backups/mysql", time.Minute)
	_, err := b.Backup(context.Background())
	c.Assert(err, gc.ErrorMatches, `"mysqldump-file" in mysqldump results .* not found`)
}

func (s *mysqlSuite) TestInnodbDownloadBackup(c *gc.C) {
	unit := &stubUnit{name: "mysql/0"}
	b := newMysqlInnodbBackup(unit, "/var/backups/mysql", time.Minute)
	destDir := c.MkDir()

	localPath, err := b.DownloadBackup(context.Background(),
		Artifact{RemotePath: "/var/backups/mysql/dump.gz"}, destDir)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(localPath, gc.Equals, filepath.Join(destDir, "dump.gz"))
	c.Check(unit.ops, jc.DeepEquals, []string{
		"command sudo cp /var/backups/mysql/dump.gz /tmp && sudo chown ubuntu:ubuntu /tmp/dump.gz",
		"scp /tmp/dump.gz " + destDir,
		"command sudo rm /tmp/dump.gz",
		"command sudo rm /var/backups/mysql/dump.gz",
	})
}

func (s *mysqlSuite) TestInnodbDownloadWithoutBackup(c *gc.C) {
	unit := &stubUnit{name: "mysql/0"}
	b := newMysqlInnodbBackup(unit, "/var/backups/mysql", time.Minute)
	_, err := b.DownloadBackup(context.Background(), Artifact{}, c.MkDir())
	c.Assert(err, gc.ErrorMatches, "download of artifact without a remote path not valid")
	c.Check(unit.ops, gc.HasLen, 0)
}

func (s *mysqlSuite) TestPerconaBackupActionOrder(c *gc.C) {
	unit := &stubUnit{
		name: "percona/0",
		actions: map[string]func(map[string]interface{}) (juju.ActionResult, error){
			mysqldumpAction: func(params map[string]interface{}) (juju.ActionResult, error) {
				return completedResult(mysqldumpAction, "percona/0",
					map[string]interface{}{mysqldumpResultKey: "/var/backups/mysql/dump.gz"}), nil
			},
		},
	}
	b := newPerconaClusterBackup(unit, "/var/backups/mysql", time.Minute)
	artifact, err := b.Backup(context.Background())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(artifact.RemotePath, gc.Equals, "/var/backups/mysql/dump.gz")
	c.Check(unit.ops, jc.DeepEquals, []string{
		"action set-pxc-strict-mode mode=MASTER",
		"action mysqldump",
		"action set-pxc-strict-mode mode=ENFORCING",
	})
}

func (s *mysqlSuite) TestPerconaRestoresStrictModeOnDumpFailure(c *gc.C) {
	unit := &stubUnit{
		name: "percona/0",
		actions: map[string]func(map[string]interface{}) (juju.ActionResult, error){
			mysqldumpAction: func(params map[string]interface{}) (juju.ActionResult, error) {
				return failedResult(mysqldumpAction, "percona/0", "dump blew up"), nil
			},
		},
	}
	b := newPerconaClusterBackup(unit, "/var/backups/mysql", time.Minute)
	_, err := b.Backup(context.Background())
	c.Assert(err, jc.Satisfies, juju.IsActionError)
	c.Check(unit.ops, jc.DeepEquals, []string{
		"action set-pxc-strict-mode mode=MASTER",
		"action mysqldump",
		"action set-pxc-strict-mode mode=ENFORCING",
	})
}

func (s *mysqlSuite) TestPerconaGuardActionMustComplete(c *gc.C) {
	unit := &stubUnit{
		name: "percona/0",
		actions: map[string]func(map[string]interface{}) (juju.ActionResult, error){
			pxcStrictModeAction: func(params map[string]interface{}) (juju.ActionResult, error) {
				return failedResult(pxcStrictModeAction, "percona/0", "nope"), nil
			},
		},
	}
	b := newPerconaClusterBackup(unit, "/var/backups/mysql", time.Minute)
	_, err := b.Backup(context.Background())
	c.Assert(err, gc.ErrorMatches, "setting pxc strict mode to MASTER: .*")
	// The dump never ran.
	c.Check(unit.ops, jc.DeepEquals, []string{"action set-pxc-strict-mode mode=MASTER"})
}
