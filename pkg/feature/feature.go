package feature

import (
	"fmt"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// Kind tags a feature payload. The values double as the stanza names in
// layer manifests.
type Kind string

const (
	KindInstall           Kind = "install"
	KindEnsureDirExists   Kind = "ensure_dir_exists"
	KindEnsureDirSymlink  Kind = "ensure_dir_symlink"
	KindEnsureFileSymlink Kind = "ensure_file_symlink"
	KindRemove            Kind = "remove"
	KindUserAdd           Kind = "user"
	KindGroupAdd          Kind = "group"
	KindUserMod           Kind = "usermod"
	KindRpmInstall        Kind = "rpm_install"
	KindRpmRemove         Kind = "rpm_remove"
	KindClone             Kind = "clone"
	KindExtract           Kind = "extract"
	KindMount             Kind = "mount"
	KindRequires          Kind = "requires"
)

// Requirement is one (key, validator) pair a feature needs satisfied.
type Requirement struct {
	Key       item.Key
	Validator validator.Validator

	// Ordered forces the provider to be applied before the requirer. Hard
	// build dependencies (parent dir exists before install) are ordered;
	// purely logical "must hold by the end of the layer" requirements
	// (a user's home directory) are not, which keeps them from inducing
	// spurious cycles.
	Ordered bool
}

// Ordered builds a hard, ordering requirement.
func Ordered(key item.Key, v validator.Validator) Requirement {
	return Requirement{Key: key, Validator: v, Ordered: true}
}

// Unordered builds a logical requirement that adds no ordering edge.
func Unordered(key item.Key, v validator.Validator) Requirement {
	return Requirement{Key: key, Validator: v, Ordered: false}
}

// Payload is the kind-specific data of a feature. Implementations must be
// pure: Provides and Requires are called repeatedly during a compile and
// must return the same answer every time.
type Payload interface {
	Kind() Kind

	// Provides lists the items this feature adds to the image.
	Provides() []item.Item

	// Requires lists the items that must be provided by other features or
	// by the parent layer.
	Requires() []Requirement
}

// Feature is an immutable descriptor: a build-system label for diagnostics
// plus the kind payload. Construct with New and do not mutate afterwards.
type Feature struct {
	Label string
	Data  Payload
}

// New builds a feature from a label and payload.
func New(label string, data Payload) *Feature {
	return &Feature{Label: label, Data: data}
}

// Kind returns the payload's kind tag.
func (f *Feature) Kind() Kind { return f.Data.Kind() }

// Provides delegates to the payload.
func (f *Feature) Provides() []item.Item { return f.Data.Provides() }

// Requires delegates to the payload.
func (f *Feature) Requires() []Requirement { return f.Data.Requires() }

// String renders the feature the way error messages reference it, e.g.
// "install 'app:bin'".
func (f *Feature) String() string {
	return fmt.Sprintf("%s '%s'", f.Kind(), f.Label)
}
