package release

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jupiter-deploy/internal/config"
	"jupiter-deploy/internal/pkg/logger"
)

// Repository fixtures are served in process over the file transport: no
// network and no git binary involved.
func TestMain(m *testing.M) {
	client.InstallProtocol("file", server.DefaultServer)
	os.Exit(m.Run())
}

func newTestPipeline(t *testing.T, work string, opts *Options) *Pipeline {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	if opts.LookPath == nil {
		opts.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	}
	cfg := config.ReleaseConfig{
		Username:    "robot",
		AppPassword: "app-pass",
		Version:     "1.2.3",
		Workspace:   "sicunet1",
		WorkDir:     work,
		AuthorName:  "Release Pipeline",
		AuthorEmail: "release@example.com",
	}
	return NewPipeline(cfg, logger.NewNop(), opts)
}

// newOriginRepo builds a bare origin carrying files on branch.
func newOriginRepo(t *testing.T, branch string, files map[string]string) string {
	t.Helper()

	origin := t.TempDir()
	bare, err := gogit.PlainInit(origin, true)
	require.NoError(t, err)
	// The hosted origin's default branch matches the branch being released.
	require.NoError(t, bare.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch)),
	))

	seed := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(seed, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(branch),
		},
	})
	require.NoError(t, err)

	writeRepoFiles(t, seed, files)
	commitAll(t, repo, "initial import")

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{origin}})
	require.NoError(t, err)
	pushBranch(t, repo, branch)

	return origin
}

// advanceOrigin adds a commit to origin's branch through a scratch clone.
func advanceOrigin(t *testing.T, origin, branch string, files map[string]string) {
	t.Helper()

	scratch := t.TempDir()
	repo, err := gogit.PlainClone(scratch, false, &gogit.CloneOptions{
		URL:           origin,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
	})
	require.NoError(t, err)

	writeRepoFiles(t, scratch, files)
	commitAll(t, repo, "advance fixture")
	pushBranch(t, repo, branch)
}

func clonePlain(t *testing.T, origin, dir, branch string) *gogit.Repository {
	t.Helper()
	repo, err := gogit.PlainClone(dir, false, &gogit.CloneOptions{
		URL:           origin,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
	})
	require.NoError(t, err)
	return repo
}

func checkoutNew(t *testing.T, repo *gogit.Repository, branch string) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}))
}

func writeRepoFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func commitAll(t *testing.T, repo *gogit.Repository, message string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Fixture", Email: "fixture@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func pushBranch(t *testing.T, repo *gogit.Repository, branch string) {
	t.Helper()
	refspec := gitconfig.RefSpec("refs/heads/" + branch + ":refs/heads/" + branch)
	require.NoError(t, repo.Push(&gogit.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refspec},
	}))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	writeRepoFiles(t, root, files)
}

func assertFileContent(t *testing.T, root, rel, want string) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err, "expected %s to exist", rel)
	assert.Equal(t, want, string(content), "content of %s", rel)
}

func assertMissing(t *testing.T, root, rel string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err), "expected %s to be gone", rel)
}
