package feature

import (
	"io/fs"
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// parentDir returns the directory containing an absolute image path.
// The root's parent is the root itself; callers skip the requirement in
// that case.
func parentDir(p string) string {
	return path.Dir(path.Clean(p))
}

// ownerRequirements returns existence requirements for an entry's owner
// fields. Names left empty add no requirement.
func ownerRequirements(user, group string) []Requirement {
	var reqs []Requirement
	if user != "" {
		reqs = append(reqs, Ordered(item.UserKey(user), validator.Exists{}))
	}
	if group != "" {
		reqs = append(reqs, Ordered(item.GroupKey(group), validator.Exists{}))
	}
	return reqs
}

// Install places a single file at Dst. Directory sources have been expanded
// into one Install per file (plus EnsureDirExists per directory) before the
// feature is constructed.
type Install struct {
	Src    string
	Dst    string
	Mode   fs.FileMode
	User   string
	Group  string
	Xattrs map[string]string
}

func (Install) Kind() Kind { return KindInstall }

func (i Install) Provides() []item.Item {
	return []item.Item{item.PathEntry{
		Path:   path.Clean(i.Dst),
		Type:   item.TypeFile,
		Mode:   i.Mode,
		User:   i.User,
		Group:  i.Group,
		Xattrs: i.Xattrs,
	}}
}

func (i Install) Requires() []Requirement {
	reqs := ownerRequirements(i.User, i.Group)
	return append(reqs, Ordered(item.PathKey(parentDir(i.Dst)), validator.IsFileType{Type: item.TypeDirectory}))
}

// EnsureDirExists creates one directory. Chains like /a/b/c arrive as three
// separate features, one per component.
type EnsureDirExists struct {
	Dir   string
	Mode  fs.FileMode
	User  string
	Group string
}

func (EnsureDirExists) Kind() Kind { return KindEnsureDirExists }

func (e EnsureDirExists) Provides() []item.Item {
	return []item.Item{item.PathEntry{
		Path:  path.Clean(e.Dir),
		Type:  item.TypeDirectory,
		Mode:  e.Mode,
		User:  e.User,
		Group: e.Group,
	}}
}

func (e EnsureDirExists) Requires() []Requirement {
	reqs := ownerRequirements(e.User, e.Group)
	if parent := parentDir(e.Dir); parent != path.Clean(e.Dir) {
		reqs = append(reqs, Ordered(item.PathKey(parent), validator.IsFileType{Type: item.TypeDirectory}))
	}
	return reqs
}
