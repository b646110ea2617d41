package deploy

import "strings"

// Layout derives the staging and backup directories from the live deploy
// path. All three are siblings on the same remote filesystem so the swap
// renames never cross a mount.
type Layout struct {
	Live string
}

func NewLayout(deployPath string) Layout {
	return Layout{Live: strings.TrimRight(deployPath, "/")}
}

func (l Layout) Staging() string { return l.Live + "_temp" }

func (l Layout) Backup() string { return l.Live + "_backup" }
