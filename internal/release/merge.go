package release

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// artifactMapping moves one built or source subtree into the release
// repository.
type artifactMapping struct {
	src string
	dst string
}

// artifactMappings lists the subtrees assembled into main_repo, relative
// to the release workspace.
var artifactMappings = []artifactMapping{
	{src: buildOutputDir + "/static", dst: "main_repo/static"},
	{src: "backend/apps", dst: "main_repo/apps"},
	{src: "backend/jupiter", dst: "main_repo/jupiter"},
	{src: "backend/templates", dst: "main_repo/templates"},
}

// mergeArtifacts replaces each destination subtree wholesale with its
// source. Full overwrite, no diffing: stale files never survive a release.
func (p *Pipeline) mergeArtifacts() error {
	for _, m := range artifactMappings {
		src := filepath.Join(p.cfg.WorkDir, filepath.FromSlash(m.src))
		dst := filepath.Join(p.cfg.WorkDir, filepath.FromSlash(m.dst))

		if _, err := os.Stat(src); err != nil {
			return errors.Wrapf(err, "release: merge source %s", src)
		}
		if err := os.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, "release: clear %s", dst)
		}
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
			return errors.Wrapf(err, "release: copy %s to %s", src, dst)
		}
		p.log.Info("merged artifact tree", zap.String("src", src), zap.String("dst", dst))
	}
	return nil
}
