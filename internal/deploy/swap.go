package deploy

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jupiter-deploy/internal/pkg/logger"
)

// SwapResult records what the swap actually did, so rollback eligibility
// and backup retention can be reasoned about from facts instead of guesses.
type SwapResult struct {
	BackupCreated  bool
	Promoted       bool
	BackupRetained bool
}

// swap promotes the staging directory to the live path. The previous live
// tree is parked at the backup path for the duration of the promotion and
// restored if the promotion fails. Rollback runs only when a backup was
// created during this run: on a first deploy there is nothing to restore.
func swap(remote Remote, log *logger.Logger, layout Layout, keepBackup bool) (*SwapResult, error) {
	result := &SwapResult{}

	staged, err := remote.DirExists(layout.Staging())
	if err != nil {
		return result, err
	}
	if !staged {
		return result, errors.Errorf("deploy: staging directory %s does not exist", layout.Staging())
	}

	stale, err := remote.DirExists(layout.Backup())
	if err != nil {
		return result, err
	}
	if stale {
		log.Warn("removing stale backup from a previous run", zap.String("path", layout.Backup()))
		if err := remote.RemoveAll(layout.Backup()); err != nil {
			return result, err
		}
	}

	liveExists, err := remote.DirExists(layout.Live)
	if err != nil {
		return result, err
	}
	if liveExists {
		if err := remote.Rename(layout.Live, layout.Backup()); err != nil {
			return result, errors.Wrap(err, "deploy: park live as backup")
		}
		result.BackupCreated = true
	} else {
		log.Info("live directory absent, first deployment", zap.String("path", layout.Live))
	}

	if err := remote.Rename(layout.Staging(), layout.Live); err != nil {
		err = errors.Wrap(err, "deploy: promote staging")
		if !result.BackupCreated {
			return result, err
		}
		log.Warn("promotion failed, restoring previous version", zap.Error(err))
		if rbErr := remote.Rename(layout.Backup(), layout.Live); rbErr != nil {
			return result, multierror.Append(err, errors.Wrap(rbErr, "deploy: rollback"))
		}
		log.Info("previous version restored", zap.String("path", layout.Live))
		return result, err
	}
	result.Promoted = true

	if !result.BackupCreated {
		return result, nil
	}
	if keepBackup {
		log.Info("keeping backup of previous version", zap.String("path", layout.Backup()))
		result.BackupRetained = true
		return result, nil
	}
	if err := remote.RemoveAll(layout.Backup()); err != nil {
		// The new version is already live; a cleanup failure must not fail
		// the stage and suggest a rollback.
		log.Warn("could not remove backup after promotion", zap.Error(err))
		result.BackupRetained = true
	}
	return result, nil
}
