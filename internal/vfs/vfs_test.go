package vfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesParents(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	require.NoError(t, v.WriteFile("/robots/meshes/link.stl", []byte("solid")))

	assert.True(t, v.Exists("robots"))
	assert.True(t, v.Exists("robots/meshes"))
	assert.True(t, v.Exists("/robots/meshes/link.stl"))

	data, err := v.ReadFile("robots/meshes/link.stl")
	require.NoError(t, err)
	assert.Equal(t, "solid", string(data))
}

func TestWriteFile_Overwrites(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	require.NoError(t, v.WriteText("scene.xml", "<mujoco>long</mujoco>"))
	require.NoError(t, v.WriteText("scene.xml", "<a/>"))

	data, err := v.ReadFile("scene.xml")
	require.NoError(t, err)
	assert.Equal(t, "<a/>", string(data))
}

func TestFilesAndRemove(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	require.NoError(t, v.WriteText("a/x.xml", "x"))
	require.NoError(t, v.WriteText("a/b/y.png", "y"))

	files, err := v.Files(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/y.png", "a/x.xml"}, files)

	require.NoError(t, v.Remove("a/x.xml"))
	require.NoError(t, v.Remove("a/x.xml"))
	assert.False(t, v.Exists("a/x.xml"))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a/b", Clean("/a/./b/"))
	assert.Equal(t, "a/c", Clean("a/b/../c"))
	assert.Equal(t, "a/b", Clean(`a\b`))
	assert.Equal(t, ".", Clean("/"))
}

func TestReadFile_ThroughFSInterface(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("robots/arm/scene.smdl", []byte("SMDL")))

	// fs.ReadFile dispatches to ReadFile on fs.ReadFileFS implementations
	var fsys fs.FS = v
	data, err := fs.ReadFile(fsys, "robots/arm/scene.smdl")
	require.NoError(t, err)
	assert.Equal(t, "SMDL", string(data))

	_, err = fs.ReadFile(fsys, "robots/arm/missing.smdl")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
