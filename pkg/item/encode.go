package item

import (
	"encoding/json"
	"fmt"
	"io/fs"
)

// Wire kinds for the JSON envelope. These are a persistence format (facts
// store rows) and must stay stable across releases.
const (
	wirePathEntry = "path_entry"
	wireSymlink   = "symlink"
	wireRemoved   = "removed"
	wireUser      = "user"
	wireGroup     = "group"
	wireRpm       = "rpm"
)

type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type pathEntryWire struct {
	Path   string            `json:"path"`
	Type   FileType          `json:"type"`
	Mode   uint32            `json:"mode"`
	User   string            `json:"user,omitempty"`
	Group  string            `json:"group,omitempty"`
	Xattrs map[string]string `json:"xattrs,omitempty"`
}

type symlinkWire struct {
	Link   string `json:"link"`
	Target string `json:"target"`
}

type nameWire struct {
	Name string `json:"name"`
}

type pathWire struct {
	Path string `json:"path"`
}

// Marshal encodes an item as a self-describing JSON envelope suitable for
// storage in a facts database. LayerRef is not encodable: layer references
// exist only for the duration of a compile and are never persisted.
func Marshal(it Item) ([]byte, error) {
	var kind string
	var data any
	switch v := it.(type) {
	case PathEntry:
		kind = wirePathEntry
		data = pathEntryWire{
			Path:   v.Path,
			Type:   v.Type,
			Mode:   uint32(v.Mode),
			User:   v.User,
			Group:  v.Group,
			Xattrs: v.Xattrs,
		}
	case SymlinkEntry:
		kind = wireSymlink
		data = symlinkWire{Link: v.Link, Target: v.Target}
	case RemovedEntry:
		kind = wireRemoved
		data = pathWire{Path: v.Path}
	case User:
		kind = wireUser
		data = nameWire{Name: v.Name}
	case Group:
		kind = wireGroup
		data = nameWire{Name: v.Name}
	case Rpm:
		kind = wireRpm
		data = nameWire{Name: v.Name}
	default:
		return nil, fmt.Errorf("item %T cannot be marshaled", it)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: kind, Data: raw})
}

// Unmarshal decodes an item previously encoded with Marshal.
func Unmarshal(b []byte) (Item, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case wirePathEntry:
		var w pathEntryWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return PathEntry{
			Path:   w.Path,
			Type:   w.Type,
			Mode:   fs.FileMode(w.Mode),
			User:   w.User,
			Group:  w.Group,
			Xattrs: w.Xattrs,
		}, nil
	case wireSymlink:
		var w symlinkWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return SymlinkEntry{Link: w.Link, Target: w.Target}, nil
	case wireRemoved:
		var w pathWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return RemovedEntry{Path: w.Path}, nil
	case wireUser:
		var w nameWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return User{Name: w.Name}, nil
	case wireGroup:
		var w nameWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return Group{Name: w.Name}, nil
	case wireRpm:
		var w nameWire
		if err := json.Unmarshal(env.Data, &w); err != nil {
			return nil, err
		}
		return Rpm{Name: w.Name}, nil
	}
	return nil, fmt.Errorf("unknown item kind %q", env.Kind)
}
