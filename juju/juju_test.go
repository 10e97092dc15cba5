// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package juju_test

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/juju-backup-all/juju"
)

type jujuSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&jujuSuite{})

type fakeUnit struct {
	name          string
	leader        bool
	leaderErr     error
	leaderQueries int

	actionResult juju.ActionResult
	actionErr    error
	actionCalls  []actionCall

	commands []string
	cmdErr   error

	copies []copyCall
	scpErr error
}

type actionCall struct {
	action string
	params map[string]interface{}
}

type copyCall struct {
	source      string
	destination string
}

func (u *fakeUnit) Name() string { return u.name }

func (u *fakeUnit) IsLeader(ctx context.Context) (bool, error) {
	u.leaderQueries++
	return u.leader, u.leaderErr
}

func (u *fakeUnit) RunAction(ctx context.Context, action string, params map[string]interface{}) (juju.ActionResult, error) {
	u.actionCalls = append(u.actionCalls, actionCall{action: action, params: params})
	return u.actionResult, u.actionErr
}

func (u *fakeUnit) RunCommand(ctx context.Context, command, user string) error {
	u.commands = append(u.commands, command)
	return u.cmdErr
}

func (u *fakeUnit) ScpFrom(ctx context.Context, source, destination string) error {
	u.copies = append(u.copies, copyCall{source: source, destination: destination})
	return u.scpErr
}

func (s *jujuSuite) TestGetLeaderReturnsFirstLeader(c *gc.C) {
	units := []*fakeUnit{
		{name: "mysql/0"},
		{name: "mysql/1", leader: true},
		{name: "mysql/2", leader: true},
	}
	leader, err := juju.GetLeader(context.Background(), unitSlice(units))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(leader.Name(), gc.Equals, "mysql/1")
}

func (s *jujuSuite) TestGetLeaderShortCircuits(c *gc.C) {
	units := []*fakeUnit{
		{name: "mysql/0", leader: true},
		{name: "mysql/1"},
	}
	_, err := juju.GetLeader(context.Background(), unitSlice(units))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(units[0].leaderQueries, gc.Equals, 1)
	c.Check(units[1].leaderQueries, gc.Equals, 0)
}

func (s *jujuSuite) TestGetLeaderNoLeader(c *gc.C) {
	units := []*fakeUnit{
		{name: "etcd/0"},
		{name: "etcd/1"},
	}
	_, err := juju.GetLeader(context.Background(), unitSlice(units))
	c.Assert(err, jc.Satisfies, juju.IsNoLeaderError)
	c.Check(err, gc.ErrorMatches, `no leader could be found for units \[etcd/0, etcd/1\]`)
	c.Check(errors.Cause(err).(*juju.NoLeaderError).Units, jc.DeepEquals, []string{"etcd/0", "etcd/1"})
}

func (s *jujuSuite) TestGetLeaderQueryError(c *gc.C) {
	units := []*fakeUnit{
		{name: "etcd/0", leaderErr: errors.New("boom")},
	}
	_, err := juju.GetLeader(context.Background(), unitSlice(units))
	c.Assert(err, gc.ErrorMatches, `querying leadership of unit "etcd/0": boom`)
}

func (s *jujuSuite) TestRunActionCheckedSuccess(c *gc.C) {
	unit := &fakeUnit{
		name: "etcd/0",
		actionResult: juju.ActionResult{
			Action:   "snapshot",
			Receiver: "etcd/0",
			Status:   juju.ActionCompleted,
			Results:  map[string]interface{}{"path": "/tmp/snap.tar.gz"},
		},
	}
	results, err := juju.RunActionChecked(
		context.Background(), unit, "snapshot",
		map[string]interface{}{"target": "/home/ubuntu"}, time.Minute)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(results["path"], gc.Equals, "/tmp/snap.tar.gz")
	c.Assert(unit.actionCalls, gc.HasLen, 1)
	c.Check(unit.actionCalls[0].action, gc.Equals, "snapshot")
	c.Check(unit.actionCalls[0].params, jc.DeepEquals, map[string]interface{}{"target": "/home/ubuntu"})
}

func (s *jujuSuite) TestRunActionCheckedFailedStatus(c *gc.C) {
	unit := &fakeUnit{
		name: "mysql/0",
		actionResult: juju.ActionResult{
			Action:   "mysqldump",
			Receiver: "mysql/0",
			Status:   "failed",
			Message:  "disk full",
		},
	}
	_, err := juju.RunActionChecked(context.Background(), unit, "mysqldump", nil, time.Minute)
	c.Assert(err, jc.Satisfies, juju.IsActionError)
	c.Check(err, gc.ErrorMatches, `.*failed with status "failed" and message "disk full".*`)
}

func (s *jujuSuite) TestRunActionCheckedTimeout(c *gc.C) {
	unit := &fakeUnit{
		name:      "mysql/0",
		actionErr: context.DeadlineExceeded,
	}
	_, err := juju.RunActionChecked(context.Background(), unit, "mysqldump", nil, time.Minute)
	c.Assert(err, jc.Satisfies, juju.IsTimeoutError)
	c.Check(err, gc.ErrorMatches, `task "action \"mysqldump\" on unit \"mysql/0\"" timed out \(timeout=1m0s\)`)
}

func (s *jujuSuite) TestRunCommandOnUnitPlainError(c *gc.C) {
	unit := &fakeUnit{
		name:   "postgresql/0",
		cmdErr: errors.New("exit status 1"),
	}
	err := juju.RunCommandOnUnit(context.Background(), unit, "false", "ubuntu", time.Minute)
	c.Assert(err, gc.ErrorMatches, "exit status 1")
	c.Check(juju.IsTimeoutError(err), jc.IsFalse)
}

func (s *jujuSuite) TestCopyFromUnitTimeout(c *gc.C) {
	unit := &fakeUnit{
		name:   "mysql/0",
		scpErr: context.DeadlineExceeded,
	}
	err := juju.CopyFromUnit(context.Background(), unit, "/tmp/dump.gz", "backups", time.Second)
	c.Assert(err, jc.Satisfies, juju.IsTimeoutError)
}

func (s *jujuSuite) TestParseCharmName(c *gc.C) {
	for url, expected := range map[string]string{
		"cs:mysql-innodb-cluster-5":            "mysql-innodb-cluster",
		"cs:~containers/etcd-634":              "etcd",
		"ch:amd64/focal/mysql-innodb-cluster-0": "mysql-innodb-cluster",
		"ch:postgresql-281":                    "postgresql",
		"local:focal/percona-cluster-1":        "percona-cluster",
		"etcd":                                 "etcd",
	} {
		c.Check(juju.ParseCharmName(url), gc.Equals, expected, gc.Commentf("url %q", url))
	}
}

func unitSlice(units []*fakeUnit) []juju.Unit {
	out := make([]juju.Unit, len(units))
	for i, u := range units {
		out[i] = u
	}
	return out
}
