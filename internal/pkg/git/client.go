// Package git is a thin wrapper around the go-git library covering the
// operations the release pipeline needs: clone-or-update of working copies
// and the commit/push of the assembled release.
package git

import (
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"
)

// Auth carries HTTP basic credentials (bitbucket username and app password).
type Auth struct {
	Username string
	Password string
}

type Client struct {
	auth        *Auth
	authorName  string
	authorEmail string
}

func NewClient(auth *Auth, authorName, authorEmail string) *Client {
	return &Client{auth: auth, authorName: authorName, authorEmail: authorEmail}
}

// authFor returns credentials for http(s) remotes only; other transports
// authenticate on their own.
func (c *Client) authFor(url string) transport.AuthMethod {
	if c.auth == nil || !strings.HasPrefix(url, "http") {
		return nil
	}
	return &githttp.BasicAuth{Username: c.auth.Username, Password: c.auth.Password}
}

// remoteAuth resolves credentials from the repository's origin URL.
func (c *Client) remoteAuth(repo *gogit.Repository) transport.AuthMethod {
	remote, err := repo.Remote("origin")
	if err != nil || len(remote.Config().URLs) == 0 {
		return nil
	}
	return c.authFor(remote.Config().URLs[0])
}

// IsRepository reports whether dir is the root of an existing repository.
// A missing directory and a plain directory both count as "no".
func (c *Client) IsRepository(dir string) (bool, error) {
	_, err := gogit.PlainOpen(dir)
	if err == nil {
		return true, nil
	}
	if errors.Cause(err) == gogit.ErrRepositoryNotExists {
		return false, nil
	}
	return false, errors.Wrapf(err, "git: open %s", dir)
}

// Clone checks out branch from url into dir.
func (c *Client) Clone(url, dir, branch string) error {
	opts := &gogit.CloneOptions{
		URL:  url,
		Auth: c.authFor(url),
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	if _, err := gogit.PlainClone(dir, false, opts); err != nil {
		return errors.Wrapf(err, "git: clone %s", url)
	}
	return nil
}

// Checkout switches dir to branch. When only origin/<branch> exists the
// local branch is created from it, the way a command-line checkout would.
func (c *Client) Checkout(dir, branch string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, "git: open %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, "git: worktree %s", dir)
	}

	local := plumbing.NewBranchReferenceName(branch)
	err = wt.Checkout(&gogit.CheckoutOptions{Branch: local})
	if err == nil {
		return nil
	}
	if errors.Cause(err) != plumbing.ErrReferenceNotFound {
		return errors.Wrapf(err, "git: checkout %s in %s", branch, dir)
	}

	remote, rerr := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if rerr != nil {
		return errors.Wrapf(err, "git: checkout %s in %s (no local or remote ref)", branch, dir)
	}
	err = wt.Checkout(&gogit.CheckoutOptions{Branch: local, Hash: remote.Hash(), Create: true})
	return errors.Wrapf(err, "git: checkout %s from origin in %s", branch, dir)
}

// Pull fast-forwards the checked-out branch from its origin counterpart.
// Already up to date is success.
func (c *Client) Pull(dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, "git: open %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, "git: worktree %s", dir)
	}
	head, err := repo.Head()
	if err != nil {
		return errors.Wrapf(err, "git: resolve HEAD in %s", dir)
	}

	// Without an explicit reference go-git pulls whatever the remote's HEAD
	// points at, which is not necessarily the branch checked out here.
	err = wt.Pull(&gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: head.Name(),
		Auth:          c.remoteAuth(repo),
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errors.Wrapf(err, "git: pull %s", dir)
	}
	return nil
}

// HasChanges reports whether the working tree differs from HEAD, untracked
// files included.
func (c *Client) HasChanges(dir string) (bool, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, errors.Wrapf(err, "git: open %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, errors.Wrapf(err, "git: worktree %s", dir)
	}
	status, err := wt.Status()
	if err != nil {
		return false, errors.Wrapf(err, "git: status %s", dir)
	}
	return !status.IsClean(), nil
}

// CommitAll stages every change in dir and commits it with the configured
// author.
func (c *Client) CommitAll(dir, message string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, "git: open %s", dir)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrapf(err, "git: worktree %s", dir)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return errors.Wrapf(err, "git: stage changes in %s", dir)
	}
	_, err = wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: c.authorName, Email: c.authorEmail, When: time.Now()},
	})
	return errors.Wrapf(err, "git: commit in %s", dir)
}

// Push sends the current branch to origin. Already up to date is success.
func (c *Client) Push(dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return errors.Wrapf(err, "git: open %s", dir)
	}
	err = repo.Push(&gogit.PushOptions{RemoteName: "origin", Auth: c.remoteAuth(repo)})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return errors.Wrapf(err, "git: push %s", dir)
	}
	return nil
}
