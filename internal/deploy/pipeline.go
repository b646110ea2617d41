// Package deploy pushes a pre-built artifact tree to a remote host and
// swaps it into the live directory: files are staged next to the live tree,
// the directories are exchanged by rename, and the serving processes are
// restarted. The previous version backs the swap until it has succeeded.
package deploy

import (
	"go.uber.org/zap"

	"jupiter-deploy/internal/config"
	"jupiter-deploy/internal/pipeline"
	"jupiter-deploy/internal/pkg/logger"
)

// Pipeline runs the deployment stages over one connected remote session.
type Pipeline struct {
	remote Remote
	cfg    config.DeployConfig
	log    *logger.Logger
	layout Layout
}

func NewPipeline(remote Remote, cfg config.DeployConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		remote: remote,
		cfg:    cfg,
		log:    log,
		layout: NewLayout(cfg.DeployPath),
	}
}

// Run executes transfer, swap and restart in order, stopping at the first
// failed stage.
func (p *Pipeline) Run() error {
	steps := []pipeline.Step{
		{Name: "transfer", Run: p.transferStep},
		{Name: "swap", Run: p.swapStep},
		{Name: "restart", Run: p.restartStep},
	}
	return pipeline.Run(p.log, steps)
}

func (p *Pipeline) transferStep() error {
	count, err := transfer(p.remote, p.log, p.cfg.LocalBuildPath, p.layout.Staging())
	if err != nil {
		return err
	}
	p.log.Info("build tree staged",
		zap.Int("files", count),
		zap.String("staging", p.layout.Staging()))
	return nil
}

func (p *Pipeline) swapStep() error {
	result, err := swap(p.remote, p.log, p.layout, p.cfg.KeepBackup)
	if err != nil {
		return err
	}
	p.log.Info("new version promoted",
		zap.String("live", p.layout.Live),
		zap.Bool("backup_created", result.BackupCreated),
		zap.Bool("backup_retained", result.BackupRetained))
	return nil
}

func (p *Pipeline) restartStep() error {
	return restart(p.remote, p.log, p.cfg.RestartServices)
}
