// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package process orchestrates a backup run: it walks controllers, models
// and applications, hands each in-scope application to the matching
// backup implementation, and feeds every outcome into the tracker. A
// failing application never aborts its siblings; only run-level failures
// (controller resolution, model enumeration, local filesystem) terminate
// the run.
package process

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/juju-backup-all/backup"
	"github.com/canonical/juju-backup-all/config"
	"github.com/canonical/juju-backup-all/juju"
	"github.com/canonical/juju-backup-all/tracker"
)

var logger = loggo.GetLogger("jujubackupall.process")

// BackupProcessor runs the whole batch across every selected controller.
type BackupProcessor struct {
	config    config.Config
	connector juju.Connector
	tracker   *tracker.Tracker
	clock     clock.Clock
}

// NewBackupProcessor returns a BackupProcessor for one run. The tracker
// must be freshly constructed; results from a previous run would leak
// into this one's report.
func NewBackupProcessor(cfg config.Config, connector juju.Connector, t *tracker.Tracker, clk clock.Clock) *BackupProcessor {
	return &BackupProcessor{
		config:    cfg,
		connector: connector,
		tracker:   t,
		clock:     clk,
	}
}

// ProcessBackups performs the run and returns the rendered report. The
// report is returned even when individual targets failed; an error return
// means the run itself could not proceed.
func (p *BackupProcessor) ProcessBackups(ctx context.Context) (tracker.Report, error) {
	if p.config.BackupClientConfig {
		configBackup := backup.NewClientConfigBackup(p.config.OutputDir)
		downloadPath, err := configBackup.Backup()
		if err != nil {
			return tracker.Report{}, errors.Annotate(err, "backing up client configuration")
		}
		p.tracker.AddConfigBackup(tracker.ConfigBackup{
			Config:       configBackup.Name(),
			DownloadPath: downloadPath,
		})
	}

	controllerNames, err := p.controllerNames()
	if err != nil {
		return tracker.Report{}, errors.Trace(err)
	}
	for _, controllerName := range controllerNames {
		if err := p.processController(ctx, controllerName); err != nil {
			return tracker.Report{}, errors.Trace(err)
		}
	}
	return p.tracker.Report(), nil
}

// controllerNames resolves which controllers this run visits: the
// explicit list, all known controllers, or the current one.
func (p *BackupProcessor) controllerNames() ([]string, error) {
	switch {
	case p.config.AllControllers:
		names, err := p.connector.AllControllerNames()
		return names, errors.Annotate(err, "listing controllers")
	case len(p.config.Controllers) > 0:
		return p.config.Controllers, nil
	}
	// An empty name selects the current controller.
	return []string{""}, nil
}

func (p *BackupProcessor) processController(ctx context.Context, controllerName string) error {
	controller, err := p.connector.Connect(ctx, controllerName)
	if err != nil {
		return errors.Annotatef(err, "connecting to controller %q", controllerName)
	}
	defer func() {
		if err := controller.Close(); err != nil {
			logger.Warningf("closing connection to controller %q: %v", controller.Name(), err)
		}
	}()

	logger.Infof("[%s] processing backups", controller.Name())
	processor := &ControllerProcessor{
		controller:   controller,
		appsToBackup: p.config.AppsToBackup(),
		outputDir:    p.config.OutputDir,
		paths:        p.config.Paths(),
		timeout:      p.config.Timeout,
		clock:        p.clock,
		tracker:      p.tracker,
	}
	if err := processor.BackupModels(ctx, nil); err != nil {
		return errors.Trace(err)
	}
	if p.config.BackupController {
		processor.BackupController(ctx)
	}
	return nil
}

// ControllerProcessor processes every in-scope application of one
// connected controller, and optionally the controller's own state.
type ControllerProcessor struct {
	controller   juju.Controller
	appsToBackup set.Strings
	outputDir    string
	paths        backup.Paths
	timeout      time.Duration
	clock        clock.Clock
	tracker      *tracker.Tracker
}

// BackupController backs up the controller's own state. Failure is
// recorded against this one target; it does not propagate.
func (p *ControllerProcessor) BackupController(ctx context.Context) {
	savePath := filepath.Join(p.outputDir, p.controller.Name())
	controllerBackup := backup.NewControllerBackup(p.controller, savePath, p.clock)
	p.logf("", "", "backing up controller")
	downloadPath, err := controllerBackup.Backup(ctx)
	if err != nil {
		p.logf("", "", "controller backup failed: %v", err)
		p.tracker.AddError(tracker.Error{
			Controller: p.controller.Name(),
			Reason:     err.Error(),
		})
		return
	}
	p.tracker.AddControllerBackup(tracker.ControllerBackup{
		Controller:   p.controller.Name(),
		DownloadPath: downloadPath,
	})
	p.logf("", "", "controller backed up to %s", downloadPath)
}

// BackupModels walks every model on the controller, skipping names in
// omit. Model enumeration and connection failures are run-level errors
// and propagate.
func (p *ControllerProcessor) BackupModels(ctx context.Context, omit set.Strings) error {
	modelNames, err := p.controller.ListModelNames(ctx)
	if err != nil {
		return errors.Annotatef(err, "listing models on controller %q", p.controller.Name())
	}
	toProcess := modelNames[:0:0]
	for _, name := range modelNames {
		if !omit.Contains(name) {
			toProcess = append(toProcess, name)
		}
	}
	p.logf("", "", "models to process: %s", strings.Join(toProcess, ", "))
	for _, modelName := range toProcess {
		if err := p.backupModel(ctx, modelName); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (p *ControllerProcessor) backupModel(ctx context.Context, modelName string) error {
	model, err := p.controller.Model(ctx, modelName)
	if err != nil {
		return errors.Annotatef(err, "connecting to model %q", modelName)
	}
	defer func() {
		if err := model.Close(); err != nil {
			logger.Warningf("closing connection to model %q: %v", modelName, err)
		}
	}()

	apps, err := model.Applications(ctx)
	if err != nil {
		return errors.Annotatef(err, "listing applications in model %q", modelName)
	}
	for _, app := range apps {
		charmName := juju.ParseCharmName(app.CharmURL())
		if !p.appsToBackup.Contains(charmName) {
			continue
		}
		p.backupApp(ctx, modelName, app, charmName)
	}
	return nil
}

// backupApp is the per-target failure boundary: any error backing up one
// application is recorded and the run moves on.
func (p *ControllerProcessor) backupApp(ctx context.Context, modelName string, app juju.Application, charmName string) {
	if err := p.runAppBackup(ctx, modelName, app, charmName); err != nil {
		p.logf(modelName, app.Name(), "app backup not completed: %v", err)
		p.tracker.AddError(tracker.Error{
			Controller: p.controller.Name(),
			Model:      modelName,
			Charm:      charmName,
			App:        app.Name(),
			Reason:     err.Error(),
		})
	}
}

func (p *ControllerProcessor) runAppBackup(ctx context.Context, modelName string, app juju.Application, charmName string) error {
	units, err := app.Units(ctx)
	if err != nil {
		return errors.Annotatef(err, "listing units of %q", app.Name())
	}
	leader, err := juju.GetLeader(ctx, units)
	if err != nil {
		return errors.Trace(err)
	}
	charmBackup, err := backup.ForCharm(charmName, leader, p.paths, p.timeout)
	if err != nil {
		return errors.Trace(err)
	}

	p.logf(modelName, app.Name(), "backing up app")
	artifact, err := charmBackup.Backup(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	p.logf(modelName, app.Name(), "downloading backup")
	destDir := filepath.Join(p.outputDir, p.controller.Name(), modelName, app.Name())
	downloadPath, err := charmBackup.DownloadBackup(ctx, artifact, destDir)
	if err != nil {
		return errors.Trace(err)
	}

	p.tracker.AddAppBackup(tracker.AppBackup{
		Controller:   p.controller.Name(),
		Model:        modelName,
		Charm:        charmName,
		App:          app.Name(),
		DownloadPath: downloadPath,
	})
	p.logf(modelName, app.Name(), "backup downloaded to %s", downloadPath)
	return nil
}

// logf prefixes log lines with the identifiers in play, mirroring the
// report fields.
func (p *ControllerProcessor) logf(modelName, appName, format string, args ...interface{}) {
	parts := []string{p.controller.Name()}
	if modelName != "" {
		parts = append(parts, modelName)
	}
	if appName != "" {
		parts = append(parts, appName)
	}
	logger.Infof("[%s] %s", strings.Join(parts, " "), fmt.Sprintf(format, args...))
}
