// Test Type: Unit Test
// Description: Tests for the depgraph package - symlink resolution during requirement lookup

package depgraph_test

import (
	"errors"
	"testing"

	"github.com/arthur-debert/stratum/pkg/depgraph"
	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_SymlinkAncestor(t *testing.T) {
	// /usr/bin is a symlink to /bin. An install under /usr/bin/env's parent
	// must resolve through the link to the real directory.
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/bin", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/usr", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.SymlinkEntry{Link: "/usr/bin", Target: "/bin"},
	)
	features := []*feature.Feature{
		installFeature("app:env", "/usr/bin/env", 0o755),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Empty(t, g.Edges())
}

func TestCompile_SymlinkAncestorInLayer(t *testing.T) {
	// The link and the real directory both come from the current layer, so
	// the install is ordered after the directory it lands in.
	features := []*feature.Feature{
		installFeature("app:env", "/usr/bin/env", 0o755),
		feature.New("app:bin", feature.EnsureDirExists{
			Dir: "/bin", Mode: 0o755, User: "root", Group: "root",
		}),
		feature.New("app:usr", feature.EnsureDirExists{
			Dir: "/usr", Mode: 0o755, User: "root", Group: "root",
		}),
		feature.New("app:usrbin", feature.EnsureDirSymlink{
			Link: "/usr/bin", Target: "/bin",
		}),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)

	order := labels(g.Ordered())
	assert.Less(t, indexOf(order, "app:bin"), indexOf(order, "app:env"))
	assert.Less(t, indexOf(order, "app:usr"), indexOf(order, "app:usrbin"))
	assert.Less(t, indexOf(order, "app:bin"), indexOf(order, "app:usrbin"))
}

func TestCompile_SymlinkChasedForValidator(t *testing.T) {
	// A shell that is a symlink: the executable check runs against the
	// target entry, not the link item.
	parent := baseUserFacts()
	features := []*feature.Feature{
		feature.New("app:shlink", feature.EnsureFileSymlink{
			Link: "/shell", Target: "/bin/sh",
		}),
		feature.New("app:builder", feature.UserAdd{
			Name:         "builder",
			UID:          1000,
			PrimaryGroup: "builder",
			Home:         "/home/builder",
			Shell:        "/shell",
		}),
	}

	_, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
}

func TestCompile_SymlinkToNonExecutable(t *testing.T) {
	parent := baseUserFacts()
	features := []*feature.Feature{
		installFeature("app:plainfile", "/plainfile", 0o644),
		feature.New("app:shlink", feature.EnsureFileSymlink{
			Link: "/shell", Target: "/plainfile",
		}),
		feature.New("app:builder", feature.UserAdd{
			Name:         "builder",
			UID:          1000,
			PrimaryGroup: "builder",
			Home:         "/home/builder",
			Shell:        "/shell",
		}),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	var failed *depgraph.ValidatorFailedError
	require.True(t, errors.As(err, &failed))
	// The failure names the resolved target, which is where the problem is.
	assert.Contains(t, err.Error(), "/plainfile")
}

func TestCompile_RelativeSymlinkTarget(t *testing.T) {
	// A relative target resolves against the link's directory.
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/opt", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/opt/app-v2", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.SymlinkEntry{Link: "/opt/app", Target: "app-v2"},
	)
	features := []*feature.Feature{
		installFeature("app:cfg", "/opt/app/config", 0o644),
	}

	_, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
}

func TestCompile_SymlinkLoop(t *testing.T) {
	// Two links pointing at each other must not hang the compiler. Chasing
	// gives up after a bounded number of hops and the validator is applied
	// to the link itself, which a directory requirement rejects.
	parent := facts.NewMemoryStore(
		item.SymlinkEntry{Link: "/a", Target: "/b"},
		item.SymlinkEntry{Link: "/b", Target: "/a"},
	)
	features := []*feature.Feature{
		installFeature("app:x", "/a/x", 0o644),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	var failed *depgraph.ValidatorFailedError
	assert.True(t, errors.As(err, &failed))
}

func indexOf(list []string, want string) int {
	for i, s := range list {
		if s == want {
			return i
		}
	}
	return -1
}
