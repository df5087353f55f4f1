package feature

import (
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Clone copies a subtree out of an already-built layer. The source layer's
// resolved item set rides along in SrcLayer so the compiler can enumerate
// what the clone will produce without touching the filesystem.
//
// OmitOuterDir copies the children of SrcPath instead of SrcPath itself.
// PreExistingDest means DstPath is a directory some other feature (or the
// parent layer) provides; otherwise the clone creates DstPath and only its
// parent must exist.
type Clone struct {
	SrcLayer        item.LayerRef
	SrcPath         string
	DstPath         string
	OmitOuterDir    bool
	PreExistingDest bool
}

func (Clone) Kind() Kind { return KindClone }

func (c Clone) Requires() []Requirement {
	srcValidator := validator.Validator(validator.Exists{})
	if c.OmitOuterDir {
		// Copying children only makes sense out of a directory.
		srcValidator = validator.IsFileType{Type: item.TypeDirectory}
	}
	reqs := []Requirement{
		Ordered(item.LayerKey(c.SrcLayer.Label), validator.ItemInLayer{
			Key:   item.PathKey(path.Clean(c.SrcPath)),
			Inner: srcValidator,
		}),
	}
	if c.PreExistingDest {
		reqs = append(reqs, Ordered(item.PathKey(path.Clean(c.DstPath)), validator.IsFileType{Type: item.TypeDirectory}))
	} else {
		reqs = append(reqs, Ordered(item.PathKey(parentDir(c.DstPath)), validator.IsFileType{Type: item.TypeDirectory}))
	}

	// Cloned entries are usually root:root, but not always. Whoever owns
	// the source files must exist in the destination layer too.
	users := map[string]bool{}
	groups := map[string]bool{}
	for _, entry := range c.srcEntries() {
		if entry.User != "" {
			users[entry.User] = true
		}
		if entry.Group != "" {
			groups[entry.Group] = true
		}
	}
	for _, u := range sortedNames(users) {
		reqs = append(reqs, Ordered(item.UserKey(u), validator.Exists{}))
	}
	for _, g := range sortedNames(groups) {
		reqs = append(reqs, Ordered(item.GroupKey(g), validator.Exists{}))
	}
	return reqs
}

func (c Clone) Provides() []item.Item {
	src := path.Clean(c.SrcPath)
	dst := path.Clean(c.DstPath)
	var items []item.Item

	// When the clone is creating the destination itself, it provides the
	// destination root with the source entry's type and metadata. A missing
	// or non-entry source produces nothing here; the unsatisfied source
	// requirement gives the user a clearer error than we could.
	if !c.PreExistingDest {
		if it, ok := c.SrcLayer.Lookup(item.PathKey(src)); ok {
			if entry, ok := it.(item.PathEntry); ok {
				entry.Path = dst
				items = append(items, entry)
			}
		}
	}

	for _, entry := range c.srcEntries() {
		if entry.Path == src {
			// The outer directory is either omitted, already provided as
			// the destination root above, or mapped below for the
			// clone-into-existing-dir case.
			if c.OmitOuterDir || !c.PreExistingDest {
				continue
			}
		}
		rel, ok := relativeTo(src, entry.Path)
		if !ok {
			continue
		}
		if c.PreExistingDest && !c.OmitOuterDir {
			// clone(src=/path/to/src, dst=/into/dir/) produces
			// /into/dir/src/..., not /into/dir/...
			rel = path.Join(path.Base(src), rel)
		}
		entry.Path = path.Join(dst, rel)
		items = append(items, entry)
	}
	return items
}

// srcEntries returns the path entries under SrcPath in the source layer,
// sorted by path so provides and requires are deterministic.
func (c Clone) srcEntries() []item.PathEntry {
	src := path.Clean(c.SrcPath)
	var entries []item.PathEntry
	for key, it := range c.SrcLayer.Items {
		if key.Kind != item.KindPath {
			continue
		}
		if _, ok := relativeTo(src, key.Value); !ok {
			continue
		}
		if entry, ok := it.(item.PathEntry); ok {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// relativeTo returns p relative to base when p is base or inside it.
func relativeTo(base, p string) (string, bool) {
	if p == base {
		return "", true
	}
	prefix := base + "/"
	if base == "/" {
		prefix = "/"
	}
	if strings.HasPrefix(p, prefix) {
		return p[len(prefix):], true
	}
	return "", false
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
