package item

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// FileType classifies a path entry.
type FileType string

const (
	TypeFile      FileType = "file"
	TypeDirectory FileType = "dir"
	TypeSymlink   FileType = "symlink"
)

// PathEntry is a concrete file or directory in the image, with the subset of
// metadata the compiler reasons about.
type PathEntry struct {
	Path  string
	Type  FileType
	Mode  fs.FileMode
	User  string
	Group string
	// Xattrs is optional extended attribute data. Nil and empty are
	// equivalent for equality purposes.
	Xattrs map[string]string
}

func (p PathEntry) Key() Key { return PathKey(p.Path) }

func (p PathEntry) Equal(other Item) bool {
	o, ok := other.(PathEntry)
	if !ok {
		return false
	}
	if p.Path != o.Path || p.Type != o.Type || p.Mode != o.Mode ||
		p.User != o.User || p.Group != o.Group {
		return false
	}
	if len(p.Xattrs) != len(o.Xattrs) {
		return false
	}
	for k, v := range p.Xattrs {
		if ov, ok := o.Xattrs[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Executable reports whether the entry is a regular file with any execute
// bit set.
func (p PathEntry) Executable() bool {
	return p.Type == TypeFile && p.Mode&0o111 != 0
}

func (p PathEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s %04o", p.Path, p.Type, p.Mode.Perm())
	if p.User != "" || p.Group != "" {
		fmt.Fprintf(&b, " %s:%s", p.User, p.Group)
	}
	if len(p.Xattrs) > 0 {
		keys := make([]string, 0, len(p.Xattrs))
		for k := range p.Xattrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" xattrs=")
		b.WriteString(strings.Join(keys, ","))
	}
	b.WriteString("]")
	return b.String()
}

// SymlinkEntry is a symbolic link. Its key is the link location; the target
// is a value field, so two links at the same path with different targets
// conflict.
type SymlinkEntry struct {
	Link   string
	Target string
}

func (s SymlinkEntry) Key() Key { return PathKey(s.Link) }

func (s SymlinkEntry) Equal(other Item) bool {
	o, ok := other.(SymlinkEntry)
	return ok && s == o
}

func (s SymlinkEntry) String() string {
	return fmt.Sprintf("%s -> %s [symlink]", s.Link, s.Target)
}

// RemovedEntry marks the deletion of a path. Providing it over an existing
// path item is the one sanctioned form of same-key re-provide: the remover
// is ordered after whatever provided the path.
type RemovedEntry struct {
	Path string
}

func (r RemovedEntry) Key() Key { return PathKey(r.Path) }

func (r RemovedEntry) Equal(other Item) bool {
	o, ok := other.(RemovedEntry)
	return ok && r == o
}

func (r RemovedEntry) String() string {
	return fmt.Sprintf("%s [removed]", r.Path)
}
