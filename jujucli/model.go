// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package jujucli

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"github.com/juju/naturalsort"

	"github.com/canonical/juju-backup-all/juju"
)

type model struct {
	controller *controller
	name       string
}

// qualified returns the controller-qualified model name the CLI expects.
func (m *model) qualified() string {
	return m.controller.name + ":" + m.name
}

// Name is part of the juju.Model interface.
func (m *model) Name() string {
	return m.name
}

type statusOutput struct {
	Applications map[string]applicationStatus `json:"applications"`
}

type applicationStatus struct {
	Charm string                `json:"charm"`
	Units map[string]unitStatus `json:"units"`
}

type unitStatus struct {
	Leader bool `json:"leader"`
}

// Applications is part of the juju.Model interface. Leadership flags are
// taken from the same status snapshot the application list comes from.
func (m *model) Applications(ctx context.Context) ([]juju.Application, error) {
	out, err := m.controller.runner.Run(ctx, "status", "-m", m.qualified(), "--format", "json")
	if err != nil {
		return nil, errors.Trace(err)
	}
	var parsed statusOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, errors.Annotate(err, "parsing juju status output")
	}

	appNames := make([]string, 0, len(parsed.Applications))
	for name := range parsed.Applications {
		appNames = append(appNames, name)
	}
	naturalsort.Sort(appNames)

	apps := make([]juju.Application, 0, len(appNames))
	for _, appName := range appNames {
		status := parsed.Applications[appName]
		unitNames := make([]string, 0, len(status.Units))
		for unitName := range status.Units {
			if !names.IsValidUnit(unitName) {
				logger.Warningf("ignoring malformed unit name %q in model %q", unitName, m.name)
				continue
			}
			unitNames = append(unitNames, unitName)
		}
		naturalsort.Sort(unitNames)
		units := make([]juju.Unit, len(unitNames))
		for i, unitName := range unitNames {
			units[i] = &unit{
				model:  m,
				name:   unitName,
				leader: status.Units[unitName].Leader,
			}
		}
		apps = append(apps, &application{
			name:     appName,
			charmURL: status.Charm,
			units:    units,
		})
	}
	return apps, nil
}

// Close is part of the juju.Model interface.
func (m *model) Close() error {
	return nil
}

type application struct {
	name     string
	charmURL string
	units    []juju.Unit
}

// Name is part of the juju.Application interface.
func (a *application) Name() string {
	return a.name
}

// CharmURL is part of the juju.Application interface.
func (a *application) CharmURL() string {
	return a.charmURL
}

// Units is part of the juju.Application interface.
func (a *application) Units(ctx context.Context) ([]juju.Unit, error) {
	return a.units, nil
}
