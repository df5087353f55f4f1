package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Mount marks Mountpoint as the target of a layer or host mount. Mounts
// happen at container setup, not build, so they add nothing to the image's
// item set; the mountpoint itself must already be provided with the right
// file type. Layer mounts are always directories and need the source layer
// to have been built; host mounts bind a file or a directory straight off
// the build host.
type Mount struct {
	Mountpoint  string
	SrcLayer    string // layer label, empty for host mounts
	HostSrc     string // host path, empty for layer mounts
	IsDirectory bool
}

func (Mount) Kind() Kind { return KindMount }

func (Mount) Provides() []item.Item { return nil }

func (m Mount) Requires() []Requirement {
	fileType := item.TypeFile
	if m.IsDirectory || m.SrcLayer != "" {
		fileType = item.TypeDirectory
	}
	reqs := []Requirement{
		Ordered(item.PathKey(path.Clean(m.Mountpoint)), validator.IsFileType{Type: fileType}),
	}
	if m.SrcLayer != "" {
		reqs = append(reqs, Ordered(item.LayerKey(m.SrcLayer), validator.Exists{}))
	}
	return reqs
}
