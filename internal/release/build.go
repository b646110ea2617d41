package release

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// buildOutputDir is where the frontend build writes its artifacts,
// relative to the release workspace.
const buildOutputDir = "jupiter"

// buildFrontend installs dependencies when node_modules is missing and runs
// the production build. The install decision is keyed on the real
// dependency cache, not on the presence of earlier build output.
func (p *Pipeline) buildFrontend() error {
	if _, err := p.lookPath("npm"); err != nil {
		return errors.Wrap(err, "release: npm not available")
	}

	dir := filepath.Join(p.cfg.WorkDir, frontendRepo.Dir)

	if _, err := os.Stat(filepath.Join(dir, "node_modules")); os.IsNotExist(err) {
		p.log.Info("installing frontend dependencies", zap.String("dir", dir))
		out, err := p.exec.Run(dir, "npm", "i", "--force")
		if err != nil {
			return err
		}
		p.log.Debug("npm install finished", zap.String("output", strings.TrimSpace(out)))
	} else {
		p.log.Info("node_modules present, skipping dependency install", zap.String("dir", dir))
	}

	p.log.Info("building frontend", zap.String("dir", dir))
	out, err := p.exec.Run(dir, "npm", "run", "build")
	if err != nil {
		return err
	}
	p.log.Debug("npm build finished", zap.String("output", strings.TrimSpace(out)))

	outDir := filepath.Join(p.cfg.WorkDir, buildOutputDir)
	if _, err := os.Stat(outDir); err != nil {
		return errors.Wrapf(err, "release: build output %s missing after build", outDir)
	}
	return nil
}
