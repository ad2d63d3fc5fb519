package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractPages(t *testing.T) {
	t.Run("Should extract a text file as a single page", func(t *testing.T) {
		path := writeFile(t, "notes.txt", "hello world\nsecond line")

		pages, err := ExtractPages(path)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 1, pages[0].Number)
		assert.Equal(t, "hello world\nsecond line", pages[0].Text)
	})

	t.Run("Should extract markdown text and keep headings on their own line", func(t *testing.T) {
		path := writeFile(t, "doc.md", "# INTRODUCTION\n\nsome *emphasised* body text\n\n## SUMMARY\n\nclosing words\n")

		pages, err := ExtractPages(path)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Contains(t, pages[0].Text, "INTRODUCTION\n")
		assert.Contains(t, pages[0].Text, "emphasised")
		assert.NotContains(t, pages[0].Text, "*")
		assert.NotContains(t, pages[0].Text, "#")
	})

	t.Run("Should tag unsupported formats as extraction failures", func(t *testing.T) {
		path := writeFile(t, "image.png", "not really an image")

		_, err := ExtractPages(path)
		require.Error(t, err)

		var extErr *models.ExternalError
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, models.CollaboratorExtract, extErr.Collaborator)
	})

	t.Run("Should tag a missing file as an extraction failure", func(t *testing.T) {
		_, err := ExtractPages(filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)

		var extErr *models.ExternalError
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, models.CollaboratorExtract, extErr.Collaborator)
	})
}
