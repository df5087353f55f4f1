// Test Type: Unit Test
// Description: Tests for the depgraph package - compile pipeline, ordering and error reporting

package depgraph_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/arthur-debert/stratum/pkg/depgraph"
	"github.com/arthur-debert/stratum/pkg/facts"
	"github.com/arthur-debert/stratum/pkg/feature"
	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// absenceCheck is a requirement-only payload asserting that a path does not
// exist by the end of the layer.
type absenceCheck struct{ path string }

func (absenceCheck) Kind() feature.Kind    { return feature.KindRequires }
func (absenceCheck) Provides() []item.Item { return nil }
func (a absenceCheck) Requires() []feature.Requirement {
	return []feature.Requirement{
		feature.Ordered(item.PathKey(a.path), validator.DoesNotExist{}),
	}
}

func installFeature(label, dst string, mode fs.FileMode) *feature.Feature {
	return feature.New(label, feature.Install{
		Src:   "//src:" + label,
		Dst:   dst,
		Mode:  mode,
		User:  "root",
		Group: "root",
	})
}

func removeFeature(label, path string, mustExist bool) *feature.Feature {
	return feature.New(label, feature.Remove{Path: path, MustExist: mustExist})
}

func labels(fs []*feature.Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Label
	}
	return out
}

// baseUserFacts is the parent item set most user-related tests need: the
// account databases, a home directory and a usable shell.
func baseUserFacts() *facts.MemoryStore {
	return facts.NewMemoryStore(
		item.PathEntry{Path: "/etc", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/etc/passwd", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
		item.PathEntry{Path: "/etc/group", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
		item.PathEntry{Path: "/home", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/home/builder", Type: item.TypeDirectory, Mode: 0o700, User: "root", Group: "root"},
		item.PathEntry{Path: "/bin", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/bin/sh", Type: item.TypeFile, Mode: 0o755, User: "root", Group: "root"},
		item.Group{Name: "builder"},
	)
}

func TestCompile_InstallThenRemove(t *testing.T) {
	// Scenario: a feature removes a path another feature installs. The
	// remove must run after the install even though it was declared first.
	features := []*feature.Feature{
		removeFeature("app:cleanup", "/foo", true),
		installFeature("app:foo", "/foo", 0o644),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"app:foo", "app:cleanup"}, labels(g.Ordered()))
}

func TestCompile_RemoveMissingPath(t *testing.T) {
	features := []*feature.Feature{
		removeFeature("app:cleanup", "/foo", true),
	}

	_, err := depgraph.Compile(features, nil)
	require.Error(t, err)

	var missing *depgraph.MissingItemError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, item.PathKey("/foo"), missing.Key)
	assert.Equal(t, "app:cleanup", missing.RequiredBy.Label)
	assert.Contains(t, err.Error(), "Path(/foo) is required by")
	assert.Contains(t, err.Error(), "but was never provided")
}

func TestCompile_RemoveWithoutMustExist(t *testing.T) {
	// Without must_exist, removing a path nothing provides is a no-op.
	features := []*feature.Feature{
		removeFeature("app:cleanup", "/foo", false),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"app:cleanup"}, labels(g.Ordered()))
}

func TestCompile_NonExecutableShell(t *testing.T) {
	// Scenario: a user's shell points at a file installed without execute
	// bits. The unordered shell requirement still gets validated.
	features := []*feature.Feature{
		installFeature("app:fakeshell", "/fakeshell", 0o644),
		feature.New("app:builder", feature.UserAdd{
			Name:         "builder",
			UID:          1000,
			PrimaryGroup: "builder",
			Home:         "/home/builder",
			Shell:        "/fakeshell",
		}),
	}

	_, err := depgraph.Compile(features, baseUserFacts())
	require.Error(t, err)

	var failed *depgraph.ValidatorFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "app:builder", failed.RequiredBy.Label)
	assert.Equal(t, "Executable", failed.Validator.String())
	assert.Contains(t, err.Error(), "/fakeshell")
	assert.Contains(t, err.Error(), "does not satisfy the validation rules: Executable")
}

func TestCompile_ConflictingProvides(t *testing.T) {
	features := []*feature.Feature{
		installFeature("app:foo-a", "/foo", 0o644),
		installFeature("app:foo-b", "/foo", 0o755),
	}

	_, err := depgraph.Compile(features, nil)
	require.Error(t, err)

	var conflict *depgraph.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, item.PathKey("/foo"), conflict.Key)
	assert.ElementsMatch(t, []string{"app:foo-a", "app:foo-b"}, labels(conflict.Features))
	assert.Contains(t, err.Error(), "is provided by multiple features")
}

func TestCompile_ConflictSymmetry(t *testing.T) {
	a := installFeature("app:foo-a", "/foo", 0o644)
	b := installFeature("app:foo-b", "/foo", 0o755)

	_, errAB := depgraph.Compile([]*feature.Feature{a, b}, nil)
	_, errBA := depgraph.Compile([]*feature.Feature{b, a}, nil)
	require.Error(t, errAB)
	require.Error(t, errBA)

	assert.Equal(t, errAB.Error(), errBA.Error())

	var conflictAB, conflictBA *depgraph.ConflictError
	require.True(t, errors.As(errAB, &conflictAB))
	require.True(t, errors.As(errBA, &conflictBA))
	assert.Equal(t, conflictAB.Key, conflictBA.Key)
	assert.True(t, conflictAB.Item.Equal(conflictBA.Item))
	assert.Equal(t, labels(conflictAB.Features), labels(conflictBA.Features))
}

func TestCompile_IdempotentRedeclaration(t *testing.T) {
	t.Run("same_order", func(t *testing.T) {
		features := []*feature.Feature{
			installFeature("app:foo-a", "/foo", 0o644),
			installFeature("app:foo-b", "/foo", 0o644),
		}
		g, err := depgraph.Compile(features, nil)
		require.NoError(t, err)
		assert.Len(t, g.Ordered(), 2)
	})

	t.Run("reversed", func(t *testing.T) {
		features := []*feature.Feature{
			installFeature("app:foo-b", "/foo", 0o644),
			installFeature("app:foo-a", "/foo", 0o644),
		}
		_, err := depgraph.Compile(features, nil)
		require.NoError(t, err)
	})
}

func TestCompile_UserInstallCycle(t *testing.T) {
	// Scenario: /etc/passwd is installed owned by a user whose creation
	// needs /etc/passwd to exist. Both ordered requirements point at each
	// other, and the cycle report names exactly these two features.
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/etc", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/etc/group", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
		item.PathEntry{Path: "/home", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/home/builder", Type: item.TypeDirectory, Mode: 0o700, User: "root", Group: "root"},
		item.PathEntry{Path: "/bin/sh", Type: item.TypeFile, Mode: 0o755, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		feature.New("app:passwd", feature.Install{
			Src:   "//src:passwd",
			Dst:   "/etc/passwd",
			Mode:  0o644,
			User:  "builder",
			Group: "root",
		}),
		feature.New("app:builder", feature.UserAdd{
			Name:         "builder",
			UID:          1000,
			PrimaryGroup: "root",
			Home:         "/home/builder",
			Shell:        "/bin/sh",
		}),
		// Unrelated feature that must stay out of the cycle report.
		installFeature("app:bystander", "/bystander", 0o644),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	var cycle *depgraph.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.ElementsMatch(t, []string{"app:passwd", "app:builder"}, labels(cycle.Features))
	assert.Contains(t, err.Error(), "cycle in dependency graph:")
}

func TestCompile_ParentInheritance(t *testing.T) {
	// A requirement satisfied only by the parent layer resolves with no
	// ordering edges: the parent is already applied.
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/usr", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		installFeature("app:tool", "/usr/tool", 0o755),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Empty(t, g.Edges())
	assert.Equal(t, []string{"app:tool"}, labels(g.Ordered()))
}

func TestCompile_Determinism(t *testing.T) {
	features := []*feature.Feature{
		installFeature("app:c", "/c", 0o644),
		installFeature("app:a", "/a", 0o644),
		installFeature("app:b", "/b", 0o644),
	}

	first, err := depgraph.Compile(features, nil)
	require.NoError(t, err)
	second, err := depgraph.Compile(features, nil)
	require.NoError(t, err)

	assert.Equal(t, labels(first.Ordered()), labels(second.Ordered()))
	// Independent features keep their declaration order.
	assert.Equal(t, []string{"app:c", "app:a", "app:b"}, labels(first.Ordered()))
}

func TestCompile_DependencyOrdering(t *testing.T) {
	// The directory comes last in declaration order but first in the
	// application order, since both installs need it.
	features := []*feature.Feature{
		installFeature("app:one", "/opt/one", 0o644),
		installFeature("app:two", "/opt/two", 0o644),
		feature.New("app:opt", feature.EnsureDirExists{
			Dir: "/opt", Mode: 0o755, User: "root", Group: "root",
		}),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"app:opt", "app:one", "app:two"}, labels(g.Ordered()))
}

func TestCompile_UnorderedRequirementAvoidsCycle(t *testing.T) {
	// The user's home directory is owned by the user, so the directory
	// feature needs the user first. The user's home requirement is
	// unordered and must not close a cycle.
	features := []*feature.Feature{
		feature.New("app:home", feature.EnsureDirExists{
			Dir: "/home/builder", Mode: 0o700, User: "builder", Group: "builder",
		}),
		feature.New("app:builder", feature.UserAdd{
			Name:         "builder",
			UID:          1000,
			PrimaryGroup: "builder",
			Home:         "/home/builder",
			Shell:        "/bin/sh",
		}),
	}
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/etc/passwd", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
		item.PathEntry{Path: "/etc/group", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
		item.PathEntry{Path: "/home", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/bin/sh", Type: item.TypeFile, Mode: 0o755, User: "root", Group: "root"},
		item.Group{Name: "builder"},
	)

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Equal(t, []string{"app:builder", "app:home"}, labels(g.Ordered()))
}

func TestCompile_ParentConflict(t *testing.T) {
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/foo", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		installFeature("app:foo", "/foo", 0o755),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	var conflict *depgraph.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, item.PathKey("/foo"), conflict.Key)
}

func TestCompile_ParentIdenticalRedeclaration(t *testing.T) {
	entry := item.PathEntry{Path: "/foo", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"}
	parent := facts.NewMemoryStore(entry)
	features := []*feature.Feature{
		installFeature("app:foo", "/foo", 0o644),
	}

	_, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
}

func TestCompile_RemoveParentPath(t *testing.T) {
	parent := facts.NewMemoryStore(
		item.PathEntry{Path: "/foo", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		removeFeature("app:cleanup", "/foo", true),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Empty(t, g.Edges())
}

func TestCompile_ConflictReportedBeforeMissing(t *testing.T) {
	// A conflict and an unrelated missing dependency in the same layer:
	// the conflict wins.
	features := []*feature.Feature{
		removeFeature("app:cleanup", "/nowhere", true),
		installFeature("app:foo-a", "/foo", 0o644),
		installFeature("app:foo-b", "/foo", 0o755),
	}

	_, err := depgraph.Compile(features, nil)
	require.Error(t, err)

	var conflict *depgraph.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestCompile_Clone(t *testing.T) {
	srcItems := map[item.Key]item.Item{}
	for _, it := range []item.Item{
		item.PathEntry{Path: "/data", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/data/a.txt", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"},
	} {
		srcItems[it.Key()] = it
	}
	ref := item.LayerRef{Label: "//img:src", Items: srcItems}

	// The source layer rides along in the parent universe; the clone's
	// destination parent comes from a feature in this layer.
	parent := facts.NewMemoryStore(ref)
	features := []*feature.Feature{
		feature.New("app:clone", feature.Clone{
			SrcLayer: ref,
			SrcPath:  "/data",
			DstPath:  "/copied/data",
		}),
		feature.New("app:copied", feature.EnsureDirExists{
			Dir: "/copied", Mode: 0o755, User: "root", Group: "root",
		}),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Equal(t, []string{"app:copied", "app:clone"}, labels(g.Ordered()))

	keys := map[item.Key]bool{}
	for _, it := range g.Provides() {
		keys[it.Key()] = true
	}
	assert.True(t, keys[item.PathKey("/copied/data")])
	assert.True(t, keys[item.PathKey("/copied/data/a.txt")])
}

func TestCompile_CloneMissingSource(t *testing.T) {
	ref := item.LayerRef{Label: "//img:src", Items: map[item.Key]item.Item{}}
	parent := facts.NewMemoryStore(ref)
	features := []*feature.Feature{
		feature.New("app:clone", feature.Clone{
			SrcLayer: ref,
			SrcPath:  "/data",
			DstPath:  "/copied",
		}),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	// The layer item exists; what fails is the in-layer source check.
	var failed *depgraph.ValidatorFailedError
	require.True(t, errors.As(err, &failed))
	assert.Contains(t, err.Error(), "ItemInLayer(Path(/data): Exists)")
}

func TestCompile_Extract(t *testing.T) {
	busybox := item.PathEntry{Path: "/usr/bin/busybox", Type: item.TypeFile, Mode: 0o755, User: "root", Group: "root"}
	ref := item.LayerRef{Label: "//img:tools", Items: map[item.Key]item.Item{busybox.Key(): busybox}}
	parent := facts.NewMemoryStore(
		ref,
		item.PathEntry{Path: "/usr", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/usr/bin", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		feature.New("app:busybox", feature.Extract{SrcLayer: "//img:tools", Binaries: []string{"/usr/bin/busybox"}}),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)

	provides := g.Provides()
	require.Len(t, provides, 1)
	assert.Equal(t, item.PathKey("/usr/bin/busybox"), provides[0].Key())
}

func TestCompile_ExtractNonExecutable(t *testing.T) {
	words := item.PathEntry{Path: "/usr/share/words", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"}
	ref := item.LayerRef{Label: "//img:tools", Items: map[item.Key]item.Item{words.Key(): words}}
	parent := facts.NewMemoryStore(
		ref,
		item.PathEntry{Path: "/usr", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
		item.PathEntry{Path: "/usr/share", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"},
	)
	features := []*feature.Feature{
		feature.New("app:words", feature.Extract{SrcLayer: "//img:tools", Binaries: []string{"/usr/share/words"}}),
	}

	_, err := depgraph.Compile(features, parent)
	require.Error(t, err)

	var failed *depgraph.ValidatorFailedError
	require.True(t, errors.As(err, &failed))
	assert.Contains(t, err.Error(), "Executable")
}

func TestCompile_MountOrderedAfterMountpoint(t *testing.T) {
	ref := item.LayerRef{Label: "//img:data", Items: map[item.Key]item.Item{}}
	parent := facts.NewMemoryStore(ref)
	features := []*feature.Feature{
		feature.New("app:mnt", feature.Mount{Mountpoint: "/data", SrcLayer: "//img:data"}),
		feature.New("app:data", feature.EnsureDirExists{
			Dir: "/data", Mode: 0o755, User: "root", Group: "root",
		}),
	}

	g, err := depgraph.Compile(features, parent)
	require.NoError(t, err)
	assert.Equal(t, []string{"app:data", "app:mnt"}, labels(g.Ordered()))
}

func TestCompile_EmptyLayer(t *testing.T) {
	g, err := depgraph.Compile(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, g.Ordered())
	assert.Empty(t, g.Provides())
}

func TestCompile_RemovalSatisfiesDoesNotExist(t *testing.T) {
	// A path installed and then removed in the same layer counts as absent,
	// and the check is ordered after the removal.
	features := []*feature.Feature{
		installFeature("app:foo", "/foo", 0o644),
		removeFeature("app:cleanup", "/foo", true),
		feature.New("app:check", absenceCheck{path: "/foo"}),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)

	order := labels(g.Ordered())
	assert.Less(t, indexOf(order, "app:cleanup"), indexOf(order, "app:check"))
}

func TestCompile_PresentPathFailsDoesNotExist(t *testing.T) {
	features := []*feature.Feature{
		installFeature("app:foo", "/foo", 0o644),
		feature.New("app:check", absenceCheck{path: "/foo"}),
	}

	_, err := depgraph.Compile(features, nil)
	require.Error(t, err)

	var failed *depgraph.ValidatorFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "DoesNotExist", failed.Validator.String())
}

func TestCompile_AbsentPathSatisfiesDoesNotExist(t *testing.T) {
	features := []*feature.Feature{
		feature.New("app:check", absenceCheck{path: "/foo"}),
	}

	_, err := depgraph.Compile(features, nil)
	require.NoError(t, err)
}

func TestCompile_ProvidesReflectRemoval(t *testing.T) {
	features := []*feature.Feature{
		installFeature("app:foo", "/foo", 0o644),
		removeFeature("app:cleanup", "/foo", false),
	}

	g, err := depgraph.Compile(features, nil)
	require.NoError(t, err)

	provides := g.Provides()
	require.Len(t, provides, 1)
	assert.Equal(t, item.RemovedEntry{Path: "/foo"}, provides[0])
}
