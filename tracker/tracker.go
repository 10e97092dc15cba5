// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package tracker accumulates the outcome of every backup target touched
// by a run and renders them as one structured report. Appends never fail;
// the tracker must not be a reason a result is lost.
package tracker

import (
	"sync"
)

// AppBackup records a successfully downloaded application backup.
type AppBackup struct {
	Controller   string `json:"controller"`
	Model        string `json:"model"`
	Charm        string `json:"charm"`
	App          string `json:"app"`
	DownloadPath string `json:"download_path"`
}

// ControllerBackup records a successful controller state backup.
type ControllerBackup struct {
	Controller   string `json:"controller"`
	DownloadPath string `json:"download_path"`
}

// ConfigBackup records a successful local configuration backup.
type ConfigBackup struct {
	Config       string `json:"config"`
	DownloadPath string `json:"download_path"`
}

// Error records a failed target with whatever identifying fields were
// known at the time of failure.
type Error struct {
	Controller string `json:"controller,omitempty"`
	Model      string `json:"model,omitempty"`
	Charm      string `json:"charm,omitempty"`
	App        string `json:"app,omitempty"`
	Reason     string `json:"error_reason"`
}

// Report is the rendered outcome of a run: all successes grouped by kind
// plus the failures. The errors key is omitted entirely when the run was
// clean.
type Report struct {
	ControllerBackups []ControllerBackup `json:"controller_backups"`
	ConfigBackups     []ConfigBackup     `json:"config_backups"`
	AppBackups        []AppBackup        `json:"app_backups"`
	Errors            []Error            `json:"errors,omitempty"`
}

// Tracker is an append-only accumulator of run outcomes. Construct one per
// run; reusing a tracker across runs leaks stale results. Appends are
// mutex guarded so a future parallel orchestrator stays safe.
type Tracker struct {
	mu     sync.Mutex
	report Report
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		report: Report{
			ControllerBackups: []ControllerBackup{},
			ConfigBackups:     []ConfigBackup{},
			AppBackups:        []AppBackup{},
		},
	}
}

// AddAppBackup records a successful application backup.
func (t *Tracker) AddAppBackup(record AppBackup) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.AppBackups = append(t.report.AppBackups, record)
}

// AddControllerBackup records a successful controller backup.
func (t *Tracker) AddControllerBackup(record ControllerBackup) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.ControllerBackups = append(t.report.ControllerBackups, record)
}

// AddConfigBackup records a successful configuration backup.
func (t *Tracker) AddConfigBackup(record ConfigBackup) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.ConfigBackups = append(t.report.ConfigBackups, record)
}

// AddError records a failed target.
func (t *Tracker) AddError(record Error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Errors = append(t.report.Errors, record)
}

// Report returns a snapshot of everything recorded so far, in insertion
// order.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := Report{
		ControllerBackups: append([]ControllerBackup{}, t.report.ControllerBackups...),
		ConfigBackups:     append([]ConfigBackup{}, t.report.ConfigBackups...),
		AppBackups:        append([]AppBackup{}, t.report.AppBackups...),
	}
	if len(t.report.Errors) > 0 {
		snapshot.Errors = append([]Error{}, t.report.Errors...)
	}
	return snapshot
}
