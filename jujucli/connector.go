// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujucli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/naturalsort"

	"github.com/canonical/juju-backup-all/juju"
)

// Connector implements juju.Connector on top of the juju CLI.
type Connector struct {
	runner Runner
}

// NewConnector returns a Connector using the installed juju binary.
func NewConnector() *Connector {
	return &Connector{runner: execRunner{}}
}

// NewConnectorWithRunner returns a Connector with a caller supplied
// Runner, for testing.
func NewConnectorWithRunner(runner Runner) *Connector {
	return &Connector{runner: runner}
}

type controllersOutput struct {
	Controllers       map[string]json.RawMessage `json:"controllers"`
	CurrentController string                     `json:"current-controller"`
}

func (c *Connector) listControllers(ctx context.Context) (controllersOutput, error) {
	out, err := c.runner.Run(ctx, "controllers", "--format", "json")
	if err != nil {
		return controllersOutput{}, errors.Trace(err)
	}
	var parsed controllersOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return controllersOutput{}, errors.Annotate(err, "parsing juju controllers output")
	}
	return parsed, nil
}

// AllControllerNames is part of the juju.Connector interface.
func (c *Connector) AllControllerNames() ([]string, error) {
	parsed, err := c.listControllers(context.Background())
	if err != nil {
		return nil, errors.Trace(err)
	}
	names := make([]string, 0, len(parsed.Controllers))
	for name := range parsed.Controllers {
		names = append(names, name)
	}
	naturalsort.Sort(names)
	return names, nil
}

// Connect is part of the juju.Connector interface.
func (c *Connector) Connect(ctx context.Context, controllerName string) (juju.Controller, error) {
	parsed, err := c.listControllers(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if controllerName == "" {
		if parsed.CurrentController == "" {
			return nil, errors.NotFoundf("current controller")
		}
		controllerName = parsed.CurrentController
	}
	if _, ok := parsed.Controllers[controllerName]; !ok {
		return nil, errors.NotFoundf("controller %q", controllerName)
	}
	return &controller{name: controllerName, runner: c.runner}, nil
}

type controller struct {
	name   string
	runner Runner
}

// Name is part of the juju.Controller interface.
func (c *controller) Name() string {
	return c.name
}

type modelsOutput struct {
	Models []struct {
		Name      string `json:"name"`
		ShortName string `json:"short-name"`
	} `json:"models"`
}

// ListModelNames is part of the juju.Controller interface.
func (c *controller) ListModelNames(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "models", "-c", c.name, "--format", "json")
	if err != nil {
		return nil, errors.Trace(err)
	}
	var parsed modelsOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, errors.Annotate(err, "parsing juju models output")
	}
	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		name := m.ShortName
		if name == "" {
			name = m.Name
		}
		names = append(names, name)
	}
	return names, nil
}

// Model is part of the juju.Controller interface.
func (c *controller) Model(ctx context.Context, name string) (juju.Model, error) {
	return &model{controller: c, name: name}, nil
}

// CreateBackup is part of the juju.Controller interface.
func (c *controller) CreateBackup(ctx context.Context) (string, juju.BackupMetadata, error) {
	archivePath := filepath.Join(os.TempDir(),
		fmt.Sprintf("juju-backup-%s-%d.tar.gz", c.name, time.Now().UnixNano()))
	_, err := c.runner.Run(ctx,
		"create-backup", "-m", c.name+":controller", "--filename", archivePath)
	if err != nil {
		return "", juju.BackupMetadata{}, errors.Trace(err)
	}
	return archivePath, juju.BackupMetadata{Filename: filepath.Base(archivePath)}, nil
}

// Close is part of the juju.Controller interface. The CLI holds no
// connection to release.
func (c *controller) Close() error {
	return nil
}
