package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(ContentFile, "section-experience")
	require.NoError(t, err)
	assert.Contains(t, prompt, "bullet points")
	assert.Contains(t, prompt, "{{.Context}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ContentFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	result := Format(template, map[string]string{"Key": "Value"})
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	template := "Context: {{.Context}} / Current: {{.Current}}"
	data := map[string]string{
		"Context": "literally {{.Current}}",
		"Current": "draft",
	}

	result := Format(template, data)
	assert.Equal(t, "Context: literally {{.Current}} / Current: draft", result)
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(AnalysisFile, "extract-skills", map[string]string{
		"JobDescription": "We need a Go engineer",
		"Limit":          "15",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "We need a Go engineer")
	assert.Contains(t, prompt, "top 15 most relevant")
	assert.NotContains(t, prompt, "{{.")
}

func TestAllPromptsPresent(t *testing.T) {
	ClearCache()

	files := map[string][]string{
		ContentFile: {
			"section-education", "section-experience", "section-generic",
			"section-projects", "section-skills", "section-summary",
		},
		AnalysisFile: {"ats-score", "extract-skills", "job-match"},
	}
	for file, keys := range files {
		for _, key := range keys {
			prompt, err := Get(file, key)
			require.NoError(t, err, "%s/%s", file, key)
			assert.NotEmpty(t, prompt)
		}
	}
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(ContentFile, "section-summary")
	require.NoError(t, err)

	prompt2, err := Get(ContentFile, "section-summary")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
