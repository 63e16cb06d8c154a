package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInstructions(t *testing.T) {
	t.Run("Load returns the file content verbatim", func(t *testing.T) {
		content := "  # Location curation\n\nCite known places by id.\n\n\ttabs and trailing newline stay\n"
		path := filepath.Join(t.TempDir(), "instructions.md")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Expected to write the template file")

		loaded, err := LoadInstructions(path)

		assert.NoError(t, err, "Expected LoadInstructions to not return an error")
		assert.Equal(t, content, loaded, "Expected the template bytes unchanged")
	})

	t.Run("Load fails for a missing file", func(t *testing.T) {
		loaded, err := LoadInstructions(filepath.Join(t.TempDir(), "missing.md"))

		assert.Error(t, err, "Expected an error for a missing template")
		assert.Contains(t, err.Error(), "failed to read instruction template", "Expected specific error message")
		assert.Empty(t, loaded, "Expected no content on error")
	})

	t.Run("Load fails for a whitespace-only file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.md")
		require.NoError(t, os.WriteFile(path, []byte("  \n\t\n"), 0644), "Expected to write the template file")

		loaded, err := LoadInstructions(path)

		assert.Error(t, err, "Expected an error for an empty template")
		assert.Contains(t, err.Error(), "is empty", "Expected specific error message")
		assert.Empty(t, loaded, "Expected no content on error")
	})
}
