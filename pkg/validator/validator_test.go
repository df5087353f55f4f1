// Test Type: Unit Test
// Description: Tests for the validator package - predicates and their absence polarity

package validator_test

import (
	"testing"

	"github.com/arthur-debert/stratum/pkg/item"
	"github.com/arthur-debert/stratum/pkg/validator"
	"github.com/stretchr/testify/assert"
)

var (
	file = item.PathEntry{Path: "/f", Type: item.TypeFile, Mode: 0o644, User: "root", Group: "root"}
	dir  = item.PathEntry{Path: "/d", Type: item.TypeDirectory, Mode: 0o755, User: "root", Group: "root"}
	exe  = item.PathEntry{Path: "/x", Type: item.TypeFile, Mode: 0o755, User: "root", Group: "root"}
	link = item.SymlinkEntry{Link: "/l", Target: "/f"}
)

func TestExists(t *testing.T) {
	v := validator.Exists{}
	assert.True(t, v.Satisfies(file))
	assert.True(t, v.Satisfies(item.User{Name: "root"}))
	// Absence fails: the graph turns this into a missing-dependency error.
	assert.False(t, v.Satisfies(nil))
}

func TestDoesNotExist(t *testing.T) {
	v := validator.DoesNotExist{}
	assert.True(t, v.Satisfies(nil))
	assert.False(t, v.Satisfies(file))
	// A removal item counts as not existing.
	assert.True(t, v.Satisfies(item.RemovedEntry{Path: "/f"}))
}

func TestIsFileType(t *testing.T) {
	wantDir := validator.IsFileType{Type: item.TypeDirectory}
	assert.True(t, wantDir.Satisfies(dir))
	assert.False(t, wantDir.Satisfies(file))
	assert.False(t, wantDir.Satisfies(nil))
	// A symlink item satisfies only the symlink type.
	assert.False(t, wantDir.Satisfies(link))
	assert.True(t, validator.IsFileType{Type: item.TypeSymlink}.Satisfies(link))
}

func TestExecutable(t *testing.T) {
	v := validator.Executable{}
	assert.True(t, v.Satisfies(exe))
	assert.False(t, v.Satisfies(file))
	assert.False(t, v.Satisfies(dir))
	assert.False(t, v.Satisfies(nil))
}

func TestAllAny(t *testing.T) {
	isFile := validator.IsFileType{Type: item.TypeFile}
	isExe := validator.Executable{}

	all := validator.All{Inner: []validator.Validator{isFile, isExe}}
	assert.True(t, all.Satisfies(exe))
	assert.False(t, all.Satisfies(file))
	assert.True(t, validator.All{}.Satisfies(nil))

	any := validator.Any{Inner: []validator.Validator{isExe, validator.IsFileType{Type: item.TypeDirectory}}}
	assert.True(t, any.Satisfies(dir))
	assert.True(t, any.Satisfies(exe))
	assert.False(t, any.Satisfies(file))
	assert.False(t, validator.Any{}.Satisfies(file))
}

func TestItemInLayer(t *testing.T) {
	ref := item.LayerRef{
		Label: "//img:base",
		Items: map[item.Key]item.Item{dir.Key(): dir},
	}

	present := validator.ItemInLayer{Key: item.PathKey("/d"), Inner: validator.IsFileType{Type: item.TypeDirectory}}
	assert.True(t, present.Satisfies(ref))

	// Absent key defers to the inner validator's absence polarity.
	absent := validator.ItemInLayer{Key: item.PathKey("/missing"), Inner: validator.Exists{}}
	assert.False(t, absent.Satisfies(ref))
	absentOK := validator.ItemInLayer{Key: item.PathKey("/missing"), Inner: validator.DoesNotExist{}}
	assert.True(t, absentOK.Satisfies(ref))

	// Anything but a layer ref fails outright.
	assert.False(t, present.Satisfies(dir))
	assert.False(t, present.Satisfies(nil))
}

func TestStringForms(t *testing.T) {
	assert.Equal(t, "Exists", validator.Exists{}.String())
	assert.Equal(t, "DoesNotExist", validator.DoesNotExist{}.String())
	assert.Equal(t, "FileType(dir)", validator.IsFileType{Type: item.TypeDirectory}.String())
	assert.Equal(t, "Executable", validator.Executable{}.String())
	assert.Equal(t, "All(Exists, Executable)",
		validator.All{Inner: []validator.Validator{validator.Exists{}, validator.Executable{}}}.String())
	assert.Equal(t, "ItemInLayer(Path(/d): Exists)",
		validator.ItemInLayer{Key: item.PathKey("/d"), Inner: validator.Exists{}}.String())
}
