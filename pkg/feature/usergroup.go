package feature

import (
	"path"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// UserAdd creates a user account. The home directory and shell are
// unordered requirements: the features providing them may themselves
// depend on the user (a home directory owned by that user), so the
// compiler only checks they exist by the end of the layer. The passwd and
// group databases, and every named group, must be in place first.
type UserAdd struct {
	Name                string
	UID                 int
	PrimaryGroup        string
	SupplementaryGroups []string
	Home                string
	Shell               string
}

func (UserAdd) Kind() Kind { return KindUserAdd }

func (u UserAdd) Provides() []item.Item {
	return []item.Item{item.User{Name: u.Name}}
}

func (u UserAdd) Requires() []Requirement {
	reqs := []Requirement{
		Unordered(item.PathKey(path.Clean(u.Home)), validator.IsFileType{Type: item.TypeDirectory}),
		Unordered(item.PathKey(path.Clean(u.Shell)), validator.Executable{}),
		Ordered(item.PathKey("/etc/passwd"), validator.Exists{}),
		Ordered(item.PathKey("/etc/group"), validator.Exists{}),
		Ordered(item.GroupKey(u.PrimaryGroup), validator.Exists{}),
	}
	for _, g := range u.SupplementaryGroups {
		reqs = append(reqs, Ordered(item.GroupKey(g), validator.Exists{}))
	}
	return reqs
}

// GroupAdd creates a group.
type GroupAdd struct {
	Name string
	GID  int
}

func (GroupAdd) Kind() Kind { return KindGroupAdd }

func (g GroupAdd) Provides() []item.Item {
	return []item.Item{item.Group{Name: g.Name}}
}

func (g GroupAdd) Requires() []Requirement {
	return []Requirement{
		Ordered(item.PathKey("/etc/group"), validator.Exists{}),
	}
}

// UserMod adds supplementary groups to an existing user. It provides
// nothing: the user item already exists and usermod does not change its
// identity.
type UserMod struct {
	Username  string
	AddGroups []string
}

func (UserMod) Kind() Kind { return KindUserMod }

func (UserMod) Provides() []item.Item { return nil }

func (m UserMod) Requires() []Requirement {
	reqs := []Requirement{
		Ordered(item.UserKey(m.Username), validator.Exists{}),
	}
	for _, g := range m.AddGroups {
		reqs = append(reqs, Ordered(item.GroupKey(g), validator.Exists{}))
	}
	return reqs
}
