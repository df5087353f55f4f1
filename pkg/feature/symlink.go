package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// absoluteTarget resolves a symlink target relative to the link's directory
// when the target is not already absolute.
func absoluteTarget(link, target string) string {
	if path.IsAbs(target) {
		return path.Clean(target)
	}
	return path.Join(parentDir(link), target)
}

// EnsureDirSymlink creates a symlink whose target must be a directory.
type EnsureDirSymlink struct {
	Link   string
	Target string
}

func (EnsureDirSymlink) Kind() Kind { return KindEnsureDirSymlink }

func (s EnsureDirSymlink) Provides() []item.Item {
	return []item.Item{item.SymlinkEntry{Link: path.Clean(s.Link), Target: s.Target}}
}

func (s EnsureDirSymlink) Requires() []Requirement {
	return symlinkRequires(s.Link, s.Target, item.TypeDirectory)
}

// EnsureFileSymlink creates a symlink whose target must be a regular file.
type EnsureFileSymlink struct {
	Link   string
	Target string
}

func (EnsureFileSymlink) Kind() Kind { return KindEnsureFileSymlink }

func (s EnsureFileSymlink) Provides() []item.Item {
	return []item.Item{item.SymlinkEntry{Link: path.Clean(s.Link), Target: s.Target}}
}

func (s EnsureFileSymlink) Requires() []Requirement {
	return symlinkRequires(s.Link, s.Target, item.TypeFile)
}

func symlinkRequires(link, target string, targetType item.FileType) []Requirement {
	return []Requirement{
		Ordered(item.PathKey(absoluteTarget(link, target)), validator.IsFileType{Type: targetType}),
		Ordered(item.PathKey(parentDir(link)), validator.IsFileType{Type: item.TypeDirectory}),
	}
}
