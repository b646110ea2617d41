package deploy

// Remote is the slice of remote-host operations the deployment stages use.
// *ssh.Client implements it; tests substitute an in-memory fake.
type Remote interface {
	DirExists(path string) (bool, error)
	Rename(oldPath, newPath string) error
	RemoveAll(path string) error
	MkdirAll(path string) error
	Upload(localPath, remotePath string) error
	RestartService(name string) error
}
