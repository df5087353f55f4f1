package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Remove deletes a path from the image. With MustExist set, the path has to
// be provided by another feature or the parent layer; without it, removal
// of a nonexistent path is a no-op.
type Remove struct {
	Path      string
	MustExist bool
}

func (Remove) Kind() Kind { return KindRemove }

func (r Remove) Provides() []item.Item {
	return []item.Item{item.RemovedEntry{Path: path.Clean(r.Path)}}
}

func (r Remove) Requires() []Requirement {
	if !r.MustExist {
		return nil
	}
	return []Requirement{
		Ordered(item.PathKey(path.Clean(r.Path)), validator.Exists{}),
	}
}
