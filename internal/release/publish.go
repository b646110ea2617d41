package release

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// publish lands the merged trees in the release repository: pull first,
// then commit and push only when the merge actually changed something.
// A clean tree means the release is already published; re-runs stay
// idempotent.
func (p *Pipeline) publish() error {
	dir := filepath.Join(p.cfg.WorkDir, mainRepo.Dir)

	if err := p.git.Pull(dir); err != nil {
		return err
	}

	changed, err := p.git.HasChanges(dir)
	if err != nil {
		return err
	}
	if !changed {
		p.log.Info("working tree clean, nothing to publish", zap.String("dir", dir))
		return nil
	}

	message := fmt.Sprintf("Release version %s", p.cfg.Version)
	if err := p.git.CommitAll(dir, message); err != nil {
		return err
	}
	p.log.Info("release committed", zap.String("message", message))

	if err := p.git.Push(dir); err != nil {
		return err
	}
	p.log.Info("release pushed",
		zap.String("repo", mainRepo.Slug),
		zap.String("version", p.cfg.Version))
	return nil
}
