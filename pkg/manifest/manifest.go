package manifest

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/logging"
)

// Format selects the manifest encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// DetectFormat maps a manifest path to its encoding by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, errors.Newf(errors.ErrManifestRead, "unsupported manifest extension: %s", filepath.Ext(path))
}

// Document is a decoded manifest, one field per stanza kind. Stanza slices
// keep file order; the conversion to features walks kinds in a fixed order,
// so the same document always yields the same feature list.
type Document struct {
	Label  string `toml:"label" yaml:"label"`
	Parent string `toml:"parent,omitempty" yaml:"parent,omitempty"`

	Installs        []InstallStanza        `toml:"install,omitempty" yaml:"install,omitempty"`
	EnsureDirsExist []EnsureDirsStanza     `toml:"ensure_dirs_exist,omitempty" yaml:"ensure_dirs_exist,omitempty"`
	DirSymlinks     []SymlinkStanza        `toml:"ensure_dir_symlink,omitempty" yaml:"ensure_dir_symlink,omitempty"`
	FileSymlinks    []SymlinkStanza        `toml:"ensure_file_symlink,omitempty" yaml:"ensure_file_symlink,omitempty"`
	Removes         []RemoveStanza         `toml:"remove,omitempty" yaml:"remove,omitempty"`
	Users           []UserStanza           `toml:"user,omitempty" yaml:"user,omitempty"`
	Groups          []GroupStanza          `toml:"group,omitempty" yaml:"group,omitempty"`
	UserMods        []UserModStanza        `toml:"usermod,omitempty" yaml:"usermod,omitempty"`
	RpmInstalls     []RpmStanza            `toml:"rpm_install,omitempty" yaml:"rpm_install,omitempty"`
	RpmRemoves      []RpmStanza            `toml:"rpm_remove,omitempty" yaml:"rpm_remove,omitempty"`
	Clones          []CloneStanza          `toml:"clone,omitempty" yaml:"clone,omitempty"`
	Extracts        []ExtractStanza        `toml:"extract,omitempty" yaml:"extract,omitempty"`
	Mounts          []MountStanza          `toml:"mount,omitempty" yaml:"mount,omitempty"`
	Requires        []RequiresStanza       `toml:"requires,omitempty" yaml:"requires,omitempty"`
}

type InstallStanza struct {
	Label  string            `toml:"label,omitempty" yaml:"label,omitempty"`
	Src    string            `toml:"src" yaml:"src"`
	Dst    string            `toml:"dst" yaml:"dst"`
	Mode   string            `toml:"mode,omitempty" yaml:"mode,omitempty"`
	User   string            `toml:"user,omitempty" yaml:"user,omitempty"`
	Group  string            `toml:"group,omitempty" yaml:"group,omitempty"`
	Xattrs map[string]string `toml:"xattrs,omitempty" yaml:"xattrs,omitempty"`
}

// EnsureDirsStanza creates a chain of directories under an existing one:
// into_dir="/usr", subdirs="lib/app" yields /usr/lib and /usr/lib/app.
type EnsureDirsStanza struct {
	Label   string `toml:"label,omitempty" yaml:"label,omitempty"`
	IntoDir string `toml:"into_dir" yaml:"into_dir"`
	Subdirs string `toml:"subdirs" yaml:"subdirs"`
	Mode    string `toml:"mode,omitempty" yaml:"mode,omitempty"`
	User    string `toml:"user,omitempty" yaml:"user,omitempty"`
	Group   string `toml:"group,omitempty" yaml:"group,omitempty"`
}

type SymlinkStanza struct {
	Label  string `toml:"label,omitempty" yaml:"label,omitempty"`
	Link   string `toml:"link" yaml:"link"`
	Target string `toml:"target" yaml:"target"`
}

type RemoveStanza struct {
	Label     string `toml:"label,omitempty" yaml:"label,omitempty"`
	Path      string `toml:"path" yaml:"path"`
	MustExist bool   `toml:"must_exist,omitempty" yaml:"must_exist,omitempty"`
}

type UserStanza struct {
	Label               string   `toml:"label,omitempty" yaml:"label,omitempty"`
	Name                string   `toml:"name" yaml:"name"`
	UID                 int      `toml:"uid" yaml:"uid"`
	PrimaryGroup        string   `toml:"primary_group" yaml:"primary_group"`
	SupplementaryGroups []string `toml:"supplementary_groups,omitempty" yaml:"supplementary_groups,omitempty"`
	Home                string   `toml:"home" yaml:"home"`
	Shell               string   `toml:"shell" yaml:"shell"`
}

type GroupStanza struct {
	Label string `toml:"label,omitempty" yaml:"label,omitempty"`
	Name  string `toml:"name" yaml:"name"`
	GID   int    `toml:"gid" yaml:"gid"`
}

type UserModStanza struct {
	Label     string   `toml:"label,omitempty" yaml:"label,omitempty"`
	Username  string   `toml:"username" yaml:"username"`
	AddGroups []string `toml:"add_groups" yaml:"add_groups"`
}

type RpmStanza struct {
	Label string   `toml:"label,omitempty" yaml:"label,omitempty"`
	Rpms  []string `toml:"rpms" yaml:"rpms"`
}

type CloneStanza struct {
	Label           string `toml:"label,omitempty" yaml:"label,omitempty"`
	SrcLayer        string `toml:"src_layer" yaml:"src_layer"`
	SrcPath         string `toml:"src_path" yaml:"src_path"`
	DstPath         string `toml:"dst_path" yaml:"dst_path"`
	OmitOuterDir    bool   `toml:"omit_outer_dir,omitempty" yaml:"omit_outer_dir,omitempty"`
	PreExistingDest bool   `toml:"pre_existing_dest,omitempty" yaml:"pre_existing_dest,omitempty"`
}

type ExtractStanza struct {
	Label    string   `toml:"label,omitempty" yaml:"label,omitempty"`
	SrcLayer string   `toml:"src_layer" yaml:"src_layer"`
	Binaries []string `toml:"binaries" yaml:"binaries"`
}

// MountStanza declares a mountpoint. Exactly one of src_layer and host_src
// says where the mount comes from; layer mounts are always directories.
type MountStanza struct {
	Label       string `toml:"label,omitempty" yaml:"label,omitempty"`
	Mountpoint  string `toml:"mountpoint" yaml:"mountpoint"`
	SrcLayer    string `toml:"src_layer,omitempty" yaml:"src_layer,omitempty"`
	HostSrc     string `toml:"host_src,omitempty" yaml:"host_src,omitempty"`
	IsDirectory bool   `toml:"is_directory,omitempty" yaml:"is_directory,omitempty"`
}

type RequiresStanza struct {
	Label  string   `toml:"label,omitempty" yaml:"label,omitempty"`
	Files  []string `toml:"files,omitempty" yaml:"files,omitempty"`
	Users  []string `toml:"users,omitempty" yaml:"users,omitempty"`
	Groups []string `toml:"groups,omitempty" yaml:"groups,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Document, error) {
	logger := logging.GetLogger("manifest")

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestRead, "reading manifest %s", path)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("path", path).
		Str("label", doc.Label).
		Msg("Manifest loaded")
	return doc, nil
}

// Parse decodes manifest bytes in the given format and validates the
// document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestParse, "parsing TOML manifest")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestParse, "parsing YAML manifest")
		}
	default:
		return nil, errors.Newf(errors.ErrManifestParse, "unknown manifest format %d", format)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if d.Label == "" {
		return errors.New(errors.ErrManifestInvalid, "manifest is missing a label")
	}
	for _, s := range d.Installs {
		if s.Src == "" || s.Dst == "" {
			return errors.Newf(errors.ErrManifestInvalid, "install stanza needs src and dst (label %q)", s.Label)
		}
	}
	for _, s := range d.EnsureDirsExist {
		if s.IntoDir == "" || s.Subdirs == "" {
			return errors.Newf(errors.ErrManifestInvalid, "ensure_dirs_exist stanza needs into_dir and subdirs (label %q)", s.Label)
		}
	}
	for _, s := range append(append([]SymlinkStanza{}, d.DirSymlinks...), d.FileSymlinks...) {
		if s.Link == "" || s.Target == "" {
			return errors.Newf(errors.ErrManifestInvalid, "symlink stanza needs link and target (label %q)", s.Label)
		}
	}
	for _, s := range d.Removes {
		if s.Path == "" {
			return errors.Newf(errors.ErrManifestInvalid, "remove stanza needs a path (label %q)", s.Label)
		}
	}
	for _, s := range d.Users {
		if s.Name == "" || s.PrimaryGroup == "" || s.Home == "" || s.Shell == "" {
			return errors.Newf(errors.ErrManifestInvalid, "user stanza needs name, primary_group, home and shell (label %q)", s.Label)
		}
	}
	for _, s := range d.Groups {
		if s.Name == "" {
			return errors.Newf(errors.ErrManifestInvalid, "group stanza needs a name (label %q)", s.Label)
		}
	}
	for _, s := range d.Clones {
		if s.SrcLayer == "" || s.SrcPath == "" || s.DstPath == "" {
			return errors.Newf(errors.ErrManifestInvalid, "clone stanza needs src_layer, src_path and dst_path (label %q)", s.Label)
		}
	}
	for _, s := range d.Extracts {
		if s.SrcLayer == "" || len(s.Binaries) == 0 {
			return errors.Newf(errors.ErrManifestInvalid, "extract stanza needs src_layer and binaries (label %q)", s.Label)
		}
	}
	for _, s := range d.Mounts {
		if s.Mountpoint == "" {
			return errors.Newf(errors.ErrManifestInvalid, "mount stanza needs a mountpoint (label %q)", s.Label)
		}
		if (s.SrcLayer == "") == (s.HostSrc == "") {
			return errors.Newf(errors.ErrManifestInvalid, "mount stanza needs exactly one of src_layer and host_src (label %q)", s.Label)
		}
	}
	return nil
}
