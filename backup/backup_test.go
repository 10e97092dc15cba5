// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type factorySuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&factorySuite{})

func (s *factorySuite) TestForCharmReturnsMatchingVariant(c *gc.C) {
	unit := &stubUnit{name: "unit/0"}
	for charmName, expected := range map[string]CharmBackup{
		MysqlInnodbCharm:    &mysqlInnodbBackup{},
		PerconaClusterCharm: &perconaClusterBackup{},
		EtcdCharm:           &etcdBackup{},
		PostgresqlCharm:     &postgresqlBackup{},
	} {
		got, err := ForCharm(charmName, unit, Paths{}, time.Minute)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(got, gc.FitsTypeOf, expected, gc.Commentf("charm %q", charmName))
	}
}

func (s *factorySuite) TestForCharmUnsupported(c *gc.C) {
	for _, charmName := range []string{"swift-proxy", "rabbitmq-server", ""} {
		_, err := ForCharm(charmName, &stubUnit{name: "unit/0"}, Paths{}, time.Minute)
		c.Check(err, jc.Satisfies, errors.IsNotSupported, gc.Commentf("charm %q", charmName))
	}
}

func (s *factorySuite) TestForCharmAppliesDefaultPaths(c *gc.C) {
	got, err := ForCharm(EtcdCharm, &stubUnit{name: "etcd/0"}, Paths{}, time.Minute)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.(*etcdBackup).basedir, gc.Equals, DefaultEtcdBasedir)

	got, err = ForCharm(EtcdCharm, &stubUnit{name: "etcd/0"}, Paths{EtcdBasedir: "/srv/snaps"}, time.Minute)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.(*etcdBackup).basedir, gc.Equals, "/srv/snaps")
}

func (s *factorySuite) TestArtifactValid(c *gc.C) {
	c.Check(Artifact{}.Valid(), jc.IsFalse)
	c.Check(Artifact{RemotePath: "/tmp/dump.gz"}.Valid(), jc.IsTrue)
}
