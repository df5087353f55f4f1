package feature

import (
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
)

// RpmInstall installs a set of rpm packages. Each package becomes an Rpm
// item so later features (and child layers) can require it.
type RpmInstall struct {
	Rpms []string
}

func (RpmInstall) Kind() Kind { return KindRpmInstall }

func (r RpmInstall) Provides() []item.Item {
	items := make([]item.Item, len(r.Rpms))
	for i, name := range r.Rpms {
		items[i] = item.Rpm{Name: name}
	}
	return items
}

func (RpmInstall) Requires() []Requirement { return nil }

// RpmRemove removes installed rpm packages. Every named package must have
// been installed, either in this layer or an ancestor.
type RpmRemove struct {
	Rpms []string
}

func (RpmRemove) Kind() Kind { return KindRpmRemove }

func (RpmRemove) Provides() []item.Item { return nil }

func (r RpmRemove) Requires() []Requirement {
	reqs := make([]Requirement, len(r.Rpms))
	for i, name := range r.Rpms {
		reqs[i] = Ordered(item.RpmKey(name), validator.Exists{})
	}
	return reqs
}
