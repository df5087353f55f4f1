package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Requires declares dependencies without providing anything. It exists for
// features whose needs the compiler cannot infer, like a genrule script
// that reads files installed by other features.
type Requires struct {
	Files  []string
	Users  []string
	Groups []string
}

func (Requires) Kind() Kind { return KindRequires }

func (Requires) Provides() []item.Item { return nil }

func (r Requires) Requires() []Requirement {
	var reqs []Requirement
	for _, f := range r.Files {
		reqs = append(reqs, Ordered(item.PathKey(path.Clean(f)), validator.IsFileType{Type: item.TypeFile}))
	}
	for _, u := range r.Users {
		reqs = append(reqs, Ordered(item.UserKey(u), validator.Exists{}))
	}
	for _, g := range r.Groups {
		reqs = append(reqs, Ordered(item.GroupKey(g), validator.Exists{}))
	}
	return reqs
}
