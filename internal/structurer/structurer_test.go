package structurer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-rag/internal/models"
)

func TestStructure(t *testing.T) {
	t.Run("Should detect uppercase and keyword headings", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "Some opening text here.\nMETHODS\nwe did things\nChapter 2 results\nmore findings"},
		}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 3)
		assert.Equal(t, models.DefaultSectionName, sections[0].Name)
		assert.Equal(t, "METHODS", sections[1].Name)
		assert.Equal(t, "Chapter 2 results", sections[2].Name)
	})

	t.Run("Should assign text before the first heading to the default section", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "preamble words\nSECTION ONE\nbody"},
		}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 2)
		assert.Equal(t, models.DefaultSectionName, sections[0].Name)
		assert.Equal(t, "preamble words", sections[0].Text)
	})

	t.Run("Should yield exactly one catch-all section for a headingless document", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "just some lowercase text"},
			{Number: 2, Text: "spread across two pages"},
		}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 1)
		assert.Equal(t, models.DefaultSectionName, sections[0].Name)
		assert.Equal(t, 1, sections[0].StartPage)
		assert.Equal(t, 2, sections[0].EndPage)
		assert.Equal(t, 0, sections[0].StartWord)
		assert.Equal(t, 8, sections[0].EndWord)
	})

	t.Run("Should yield one section for an empty document", func(t *testing.T) {
		sections := Structure([]models.Page{{Number: 1, Text: ""}}, Options{})
		require.Len(t, sections, 1)
		assert.Equal(t, models.DefaultSectionName, sections[0].Name)
		assert.Equal(t, 0, sections[0].EndWord)
	})

	t.Run("Should partition word offsets without overlap", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "alpha beta\nINTRODUCTION\ngamma delta epsilon"},
			{Number: 2, Text: "APPENDIX A\nzeta"},
		}
		sections := Structure(pages, Options{})

		require.True(t, len(sections) >= 2)
		for i := 1; i < len(sections); i++ {
			assert.Equal(t, sections[i-1].EndWord, sections[i].StartWord)
		}
		assert.Equal(t, 0, sections[0].StartWord)
		assert.Equal(t, 9, sections[len(sections)-1].EndWord)
	})

	t.Run("Should drop the default section when the document opens with a heading", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "CHAPTER ONE\nthe actual body"},
		}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 1)
		assert.Equal(t, "CHAPTER ONE", sections[0].Name)
		assert.Equal(t, 0, sections[0].StartWord)
	})

	t.Run("Should not treat a long all-caps line as a heading", func(t *testing.T) {
		long := "THIS IS A VERY LONG SHOUTED LINE THAT GOES ON AND ON WELL PAST ANY PLAUSIBLE HEADING LENGTH THRESHOLD FOR A DOCUMENT"
		pages := []models.Page{{Number: 1, Text: "intro\n" + long}}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 1)
		assert.Equal(t, models.DefaultSectionName, sections[0].Name)
	})

	t.Run("Should track page ranges across headings", func(t *testing.T) {
		pages := []models.Page{
			{Number: 1, Text: "intro text\nSUMMARY\nfirst part"},
			{Number: 2, Text: "second part continues"},
		}
		sections := Structure(pages, Options{})

		require.Len(t, sections, 2)
		assert.Equal(t, 1, sections[1].StartPage)
		assert.Equal(t, 2, sections[1].EndPage)
	})
}
