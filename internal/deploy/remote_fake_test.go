package deploy

import (
	"os"
	"path"
	"strings"
)

// fakeRemote implements Remote over in-memory state so stage behavior can
// be asserted byte for byte without a server. Rename failures are forced
// per "old new" pair, restart failures per service.
type fakeRemote struct {
	files map[string][]byte
	dirs  map[string]bool
	ops   []string

	failRename  map[string]error
	failRestart map[string]error
	restarted   []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		files:       map[string][]byte{},
		dirs:        map[string]bool{},
		failRename:  map[string]error{},
		failRestart: map[string]error{},
	}
}

func (f *fakeRemote) DirExists(p string) (bool, error) {
	if f.dirs[p] {
		return true, nil
	}
	for fp := range f.files {
		if strings.HasPrefix(fp, p+"/") {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRemote) Rename(oldPath, newPath string) error {
	f.ops = append(f.ops, "rename "+oldPath+" "+newPath)
	if err := f.failRename[oldPath+" "+newPath]; err != nil {
		return err
	}

	movedFiles := map[string][]byte{}
	for fp, content := range f.files {
		if fp == oldPath || strings.HasPrefix(fp, oldPath+"/") {
			movedFiles[newPath+strings.TrimPrefix(fp, oldPath)] = content
			delete(f.files, fp)
		}
	}
	for fp, content := range movedFiles {
		f.files[fp] = content
	}

	movedDirs := map[string]bool{}
	for dp := range f.dirs {
		if dp == oldPath || strings.HasPrefix(dp, oldPath+"/") {
			movedDirs[newPath+strings.TrimPrefix(dp, oldPath)] = true
			delete(f.dirs, dp)
		}
	}
	for dp := range movedDirs {
		f.dirs[dp] = true
	}
	return nil
}

func (f *fakeRemote) RemoveAll(p string) error {
	f.ops = append(f.ops, "remove "+p)
	for fp := range f.files {
		if fp == p || strings.HasPrefix(fp, p+"/") {
			delete(f.files, fp)
		}
	}
	for dp := range f.dirs {
		if dp == p || strings.HasPrefix(dp, p+"/") {
			delete(f.dirs, dp)
		}
	}
	return nil
}

func (f *fakeRemote) MkdirAll(p string) error {
	for dir := p; dir != "/" && dir != "."; dir = path.Dir(dir) {
		f.dirs[dir] = true
	}
	return nil
}

func (f *fakeRemote) Upload(localPath, remotePath string) error {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.ops = append(f.ops, "upload "+remotePath)
	f.files[remotePath] = content
	return nil
}

func (f *fakeRemote) RestartService(name string) error {
	f.ops = append(f.ops, "restart "+name)
	if err := f.failRestart[name]; err != nil {
		return err
	}
	f.restarted = append(f.restarted, name)
	return nil
}

// seedDir registers a directory populated with rel→content files.
func (f *fakeRemote) seedDir(root string, files map[string]string) {
	f.MkdirAll(root)
	for rel, content := range files {
		full := path.Join(root, rel)
		f.MkdirAll(path.Dir(full))
		f.files[full] = []byte(content)
	}
}

// filesUnder returns rel→content for every file below root.
func (f *fakeRemote) filesUnder(root string) map[string]string {
	out := map[string]string{}
	for fp, content := range f.files {
		if strings.HasPrefix(fp, root+"/") {
			out[strings.TrimPrefix(fp, root+"/")] = string(content)
		}
	}
	return out
}
