// Package release assembles one release of the jupiter product: the three
// source repositories are brought up to date, the frontend is built, the
// artifact subtrees are merged into the release repository, and the result
// is committed and pushed.
package release

import (
	"os/exec"

	"jupiter-deploy/internal/config"
	"jupiter-deploy/internal/pipeline"
	"jupiter-deploy/internal/pkg/git"
	"jupiter-deploy/internal/pkg/logger"
)

// Git is the slice of version-control operations the pipeline uses.
// *git.Client implements it.
type Git interface {
	IsRepository(dir string) (bool, error)
	Clone(url, dir, branch string) error
	Checkout(dir, branch string) error
	Pull(dir string) error
	HasChanges(dir string) (bool, error)
	CommitAll(dir, message string) error
	Push(dir string) error
}

type Pipeline struct {
	cfg      config.ReleaseConfig
	log      *logger.Logger
	git      Git
	exec     CommandExecutor
	lookPath func(string) (string, error)
	cloneURL func(Repo) string
}

// Options substitutes collaborators, mainly for tests. Nil fields fall
// back to the real implementations.
type Options struct {
	Git      Git
	Exec     CommandExecutor
	LookPath func(string) (string, error)
	CloneURL func(Repo) string
}

func NewPipeline(cfg config.ReleaseConfig, log *logger.Logger, opts *Options) *Pipeline {
	p := &Pipeline{cfg: cfg, log: log}
	if opts != nil {
		p.git = opts.Git
		p.exec = opts.Exec
		p.lookPath = opts.LookPath
		p.cloneURL = opts.CloneURL
	}
	if p.git == nil {
		p.git = git.NewClient(
			&git.Auth{Username: cfg.Username, Password: cfg.AppPassword},
			cfg.AuthorName, cfg.AuthorEmail)
	}
	if p.exec == nil {
		p.exec = ExecExecutor{}
	}
	if p.lookPath == nil {
		p.lookPath = exec.LookPath
	}
	if p.cloneURL == nil {
		p.cloneURL = func(r Repo) string { return remoteURL(cfg, r) }
	}
	return p
}

// Run executes the release steps in order, stopping at the first failure.
func (p *Pipeline) Run() error {
	steps := []pipeline.Step{
		{Name: "sync-frontend", Run: func() error { return p.syncRepo(frontendRepo) }},
		{Name: "build-frontend", Run: p.buildFrontend},
		{Name: "sync-backend", Run: func() error { return p.syncRepo(backendRepo) }},
		{Name: "sync-main", Run: func() error { return p.syncRepo(mainRepo) }},
		{Name: "merge", Run: p.mergeArtifacts},
		{Name: "publish", Run: p.publish},
	}
	return pipeline.Run(p.log, steps)
}
