package release

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"jupiter-deploy/internal/config"
)

// Repo describes one source repository of the release.
type Repo struct {
	Dir    string // working directory name under the release workspace
	Slug   string // repository name in the bitbucket workspace
	Branch string
}

var (
	frontendRepo = Repo{Dir: "frontend", Slug: "jupiter-frontend", Branch: "main"}
	backendRepo  = Repo{Dir: "backend", Slug: "jupiter-backend", Branch: "master"}
	mainRepo     = Repo{Dir: "main_repo", Slug: "jupiter-main-web", Branch: "master"}
)

func remoteURL(cfg config.ReleaseConfig, repo Repo) string {
	return fmt.Sprintf("https://bitbucket.org/%s/%s.git", cfg.Workspace, repo.Slug)
}

// syncRepo brings the working copy of repo up to date: an existing clone is
// switched to the release branch and pulled, a missing one is cloned fresh.
// Only the exact directory name counts as the working copy; a directory of
// that name which is not a repository is refused rather than guessed about,
// and lookalike names (frontend-v2, frontend-old-backup) are never
// consulted at all.
func (p *Pipeline) syncRepo(repo Repo) error {
	dir := filepath.Join(p.cfg.WorkDir, repo.Dir)

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		url := p.cloneURL(repo)
		p.log.Info("cloning repository",
			zap.String("repo", repo.Slug),
			zap.String("dir", dir),
			zap.String("branch", repo.Branch))
		return p.git.Clone(url, dir, repo.Branch)
	case err != nil:
		return errors.Wrapf(err, "release: stat %s", dir)
	case !info.IsDir():
		return errors.Errorf("release: %s exists and is not a directory", dir)
	}

	isRepo, err := p.git.IsRepository(dir)
	if err != nil {
		return err
	}
	if !isRepo {
		return errors.Errorf("release: directory %s exists but is not a git repository", dir)
	}

	p.log.Info("updating repository",
		zap.String("repo", repo.Slug),
		zap.String("dir", dir),
		zap.String("branch", repo.Branch))
	if err := p.git.Checkout(dir, repo.Branch); err != nil {
		return err
	}
	return p.git.Pull(dir)
}
