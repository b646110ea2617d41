package deploy

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jupiter-deploy/internal/pkg/logger"
)

// transfer mirrors the local build tree into a freshly created remote
// staging directory, one file at a time, and returns the number of files
// copied. A staging directory left behind by a failed run is swept first.
func transfer(remote Remote, log *logger.Logger, localDir, stagingDir string) (int, error) {
	info, err := os.Stat(localDir)
	if err != nil {
		return 0, errors.Wrapf(err, "deploy: local build directory %s", localDir)
	}
	if !info.IsDir() {
		return 0, errors.Errorf("deploy: %s is not a directory", localDir)
	}

	stale, err := remote.DirExists(stagingDir)
	if err != nil {
		return 0, err
	}
	if stale {
		log.Warn("removing stale staging directory", zap.String("path", stagingDir))
		if err := remote.RemoveAll(stagingDir); err != nil {
			return 0, err
		}
	}
	if err := remote.MkdirAll(stagingDir); err != nil {
		return 0, err
	}

	count := 0
	err = filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		// Remote paths are POSIX regardless of the local separator.
		remotePath := path.Join(stagingDir, filepath.ToSlash(rel))
		if err := remote.MkdirAll(path.Dir(remotePath)); err != nil {
			return err
		}
		if err := remote.Upload(p, remotePath); err != nil {
			return err
		}
		log.Info("transferred file", zap.String("local", p), zap.String("remote", remotePath))
		count++
		return nil
	})
	if err != nil {
		return count, errors.Wrap(err, "deploy: transfer")
	}
	if count == 0 {
		return 0, errors.Errorf("deploy: no files found under %s", localDir)
	}
	return count, nil
}
