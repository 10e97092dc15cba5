// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backup

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/klauspost/pgzip"
)

// jujuDataEnv overrides the client configuration location, matching the
// juju client itself.
const jujuDataEnv = "JUJU_DATA"

// ClientConfigBackup archives the local Juju client configuration
// (credentials, controller cache, ssh keys) so a lost client host can be
// reconstructed. It runs once per invocation, independent of any
// controller.
type ClientConfigBackup struct {
	name      string
	configDir string
	outputDir string
}

// NewClientConfigBackup returns a ClientConfigBackup archiving $JUJU_DATA
// (or the standard client data directory) under outputDir.
func NewClientConfigBackup(outputDir string) *ClientConfigBackup {
	configDir := os.Getenv(jujuDataEnv)
	if configDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(home, ".local", "share", "juju")
		}
	}
	return &ClientConfigBackup{name: "juju", configDir: configDir, outputDir: outputDir}
}

// Name returns the logical name of the archived configuration.
func (b *ClientConfigBackup) Name() string {
	return b.name
}

// Backup writes <outputDir>/local_configs/juju.tar.gz and returns its
// absolute path.
func (b *ClientConfigBackup) Backup() (string, error) {
	if b.configDir == "" {
		return "", errors.NotFoundf("juju client configuration directory")
	}
	if _, err := os.Stat(b.configDir); err != nil {
		return "", errors.Annotatef(err, "reading client configuration %q", b.configDir)
	}
	destDir := filepath.Join(b.outputDir, "local_configs")
	if err := ensureDir(destDir); err != nil {
		return "", errors.Annotatef(err, "creating %q", destDir)
	}
	archivePath, err := filepath.Abs(filepath.Join(destDir, b.name+".tar.gz"))
	if err != nil {
		return "", errors.Trace(err)
	}
	logger.Infof("archiving client configuration %q to %q", b.configDir, archivePath)
	if err := writeTarGz(b.configDir, archivePath); err != nil {
		return "", errors.Annotate(err, "archiving client configuration")
	}
	return archivePath, nil
}

// writeTarGz archives the directory rooted at sourceDir into a gzip
// compressed tarball at archivePath. Entry names are relative to
// sourceDir.
func writeTarGz(sourceDir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return errors.Trace(err)
	}
	defer out.Close()
	gzw := pgzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	walkErr := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		tw.Close()
		gzw.Close()
		return errors.Trace(walkErr)
	}
	if err := tw.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(gzw.Close())
}
