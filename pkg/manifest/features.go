package manifest

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/arthur-debert/stratum/pkg/errors"
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
)

// LayerResolver maps a layer label to its resolved item set, for stanzas
// that reference other layers. Typically backed by the facts database.
type LayerResolver func(label string) (item.LayerRef, error)

const (
	defaultFileMode = fs.FileMode(0o644)
	defaultDirMode  = fs.FileMode(0o755)
)

// parseMode reads an octal mode string like "0755". Empty falls back to the
// given default.
func parseMode(s string, fallback fs.FileMode) (fs.FileMode, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return 0, errors.Newf(errors.ErrManifestInvalid, "invalid mode %q: expected octal like 0755", s)
	}
	return fs.FileMode(n), nil
}

func orRoot(name string) string {
	if name == "" {
		return "root"
	}
	return name
}

// stanzaLabel falls back to a synthesized, stable label when the stanza
// does not carry one.
func (d *Document) stanzaLabel(explicit string, kind feature.Kind, i int) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("%s/%s.%d", d.Label, kind, i)
}

// Features converts the document's stanzas into compiler features, in a
// fixed kind order with file order preserved inside each kind. resolve is
// only consulted for stanzas referencing other layers (clone, extract,
// layer mounts) and may be nil when there are none.
func (d *Document) Features(resolve LayerResolver) ([]*feature.Feature, error) {
	var out []*feature.Feature

	for i, s := range d.Installs {
		mode, err := parseMode(s.Mode, defaultFileMode)
		if err != nil {
			return nil, err
		}
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindInstall, i), feature.Install{
			Src:    s.Src,
			Dst:    s.Dst,
			Mode:   mode,
			User:   orRoot(s.User),
			Group:  orRoot(s.Group),
			Xattrs: s.Xattrs,
		}))
	}

	for i, s := range d.EnsureDirsExist {
		mode, err := parseMode(s.Mode, defaultDirMode)
		if err != nil {
			return nil, err
		}
		out = append(out, d.expandDirs(s, mode, i)...)
	}

	for i, s := range d.DirSymlinks {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindEnsureDirSymlink, i),
			feature.EnsureDirSymlink{Link: s.Link, Target: s.Target}))
	}
	for i, s := range d.FileSymlinks {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindEnsureFileSymlink, i),
			feature.EnsureFileSymlink{Link: s.Link, Target: s.Target}))
	}

	for i, s := range d.Removes {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindRemove, i),
			feature.Remove{Path: s.Path, MustExist: s.MustExist}))
	}

	for i, s := range d.Users {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindUserAdd, i), feature.UserAdd{
			Name:                s.Name,
			UID:                 s.UID,
			PrimaryGroup:        s.PrimaryGroup,
			SupplementaryGroups: s.SupplementaryGroups,
			Home:                s.Home,
			Shell:               s.Shell,
		}))
	}
	for i, s := range d.Groups {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindGroupAdd, i),
			feature.GroupAdd{Name: s.Name, GID: s.GID}))
	}
	for i, s := range d.UserMods {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindUserMod, i),
			feature.UserMod{Username: s.Username, AddGroups: s.AddGroups}))
	}

	for i, s := range d.RpmInstalls {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindRpmInstall, i),
			feature.RpmInstall{Rpms: s.Rpms}))
	}
	for i, s := range d.RpmRemoves {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindRpmRemove, i),
			feature.RpmRemove{Rpms: s.Rpms}))
	}

	for i, s := range d.Clones {
		ref, err := d.resolveLayer(resolve, s.SrcLayer, s.Label)
		if err != nil {
			return nil, err
		}
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindClone, i), feature.Clone{
			SrcLayer:        ref,
			SrcPath:         s.SrcPath,
			DstPath:         s.DstPath,
			OmitOuterDir:    s.OmitOuterDir,
			PreExistingDest: s.PreExistingDest,
		}))
	}

	for i, s := range d.Extracts {
		// Resolving pulls the source layer into the compile universe so the
		// executable checks against it can run.
		if _, err := d.resolveLayer(resolve, s.SrcLayer, s.Label); err != nil {
			return nil, err
		}
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindExtract, i),
			feature.Extract{SrcLayer: s.SrcLayer, Binaries: s.Binaries}))
	}

	for i, s := range d.Mounts {
		if s.SrcLayer != "" {
			if _, err := d.resolveLayer(resolve, s.SrcLayer, s.Label); err != nil {
				return nil, err
			}
		}
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindMount, i), feature.Mount{
			Mountpoint:  s.Mountpoint,
			SrcLayer:    s.SrcLayer,
			HostSrc:     s.HostSrc,
			IsDirectory: s.IsDirectory,
		}))
	}

	for i, s := range d.Requires {
		out = append(out, feature.New(d.stanzaLabel(s.Label, feature.KindRequires, i),
			feature.Requires{Files: s.Files, Users: s.Users, Groups: s.Groups}))
	}

	return out, nil
}

func (d *Document) resolveLayer(resolve LayerResolver, label, stanza string) (item.LayerRef, error) {
	if resolve == nil {
		return item.LayerRef{}, errors.Newf(errors.ErrFeatureInvalid,
			"stanza %q needs a layer resolver for %s", stanza, label)
	}
	ref, err := resolve(label)
	if err != nil {
		return item.LayerRef{}, errors.Wrapf(err, errors.ErrLayerNotFound, "resolving source layer %s", label)
	}
	return ref, nil
}

// expandDirs turns one ensure_dirs_exist stanza into a feature per path
// component, so /usr + lib/app creates /usr/lib before /usr/lib/app.
func (d *Document) expandDirs(s EnsureDirsStanza, mode fs.FileMode, i int) []*feature.Feature {
	base := d.stanzaLabel(s.Label, feature.KindEnsureDirExists, i)
	var out []*feature.Feature

	dir := path.Clean(s.IntoDir)
	for _, component := range strings.Split(strings.Trim(path.Clean(s.Subdirs), "/"), "/") {
		if component == "" || component == "." {
			continue
		}
		dir = path.Join(dir, component)
		out = append(out, feature.New(fmt.Sprintf("%s[%s]", base, dir), feature.EnsureDirExists{
			Dir:   dir,
			Mode:  mode,
			User:  orRoot(s.User),
			Group: orRoot(s.Group),
		}))
	}
	return out
}
