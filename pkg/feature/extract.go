package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Extract copies pre-linked binaries out of an already built layer. Only
// the binaries named here are claimed as provided; their shared-object
// closure rides along unclaimed, so two extracts pulling overlapping
// dependency trees do not conflict with each other.
type Extract struct {
	SrcLayer string
	Binaries []string
}

func (Extract) Kind() Kind { return KindExtract }

func (e Extract) Provides() []item.Item {
	items := make([]item.Item, 0, len(e.Binaries))
	for _, bin := range e.Binaries {
		items = append(items, item.PathEntry{
			Path:  path.Clean(bin),
			Type:  item.TypeFile,
			Mode:  0o555,
			User:  "root",
			Group: "root",
		})
	}
	return items
}

func (e Extract) Requires() []Requirement {
	var reqs []Requirement
	for _, bin := range e.Binaries {
		cleaned := path.Clean(bin)
		reqs = append(reqs,
			Ordered(item.LayerKey(e.SrcLayer), validator.ItemInLayer{
				Key:   item.PathKey(cleaned),
				Inner: validator.Executable{},
			}),
			Ordered(item.PathKey(parentDir(cleaned)), validator.IsFileType{Type: item.TypeDirectory}),
		)
	}
	return reqs
}
