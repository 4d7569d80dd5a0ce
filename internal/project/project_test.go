package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp switches the process into a fresh temp directory for the
// duration of the test and restores the original on cleanup. Init/Add/
// Vendor operate on the real filesystem relative to the working
// directory, matching original_source/src/main.rs exactly.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func TestInitScaffoldsProjectNoStd(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, Init("myapp", true))

	assert.FileExists(t, filepath.Join("myapp", "main.w"))
	assert.FileExists(t, filepath.Join("myapp", "project.wasp"))
	_, err := os.Stat(filepath.Join("myapp", "vendor", "std"))
	assert.True(t, os.IsNotExist(err), "vendor/std should not exist with noStd")
}

func TestInitRefusesExistingDirectory(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.Mkdir("myapp", 0o755))

	err := Init("myapp", true)
	assert.Error(t, err)
}

func TestAddAppendsProjectWaspLineBeforeCloning(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(projectFile, []byte{}, 0o644))

	// Add always attempts a git clone; point LOCATION at something git
	// will fail fast on so the append-then-clone ordering is still
	// exercised without any network access.
	err := Add("nope", "/nonexistent/not-a-repo")
	assert.Error(t, err)

	data, readErr := os.ReadFile(projectFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "nope /nonexistent/not-a-repo")
}

func TestVendorReadsProjectWaspAndAttemptsClones(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(projectFile, []byte("nope /nonexistent/not-a-repo\n"), 0o644))

	err := Vendor()
	assert.Error(t, err) // the clone itself fails; vendor/ was still removed and project.wasp read
	_, statErr := os.Stat(vendorDir)
	assert.True(t, os.IsNotExist(statErr) || statErr == nil)
}
