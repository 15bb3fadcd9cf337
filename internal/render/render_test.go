package render_test

import (
	"testing"

	"github.com/phrazzld/bionexus-api/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "ADH acts on the **collecting duct**.",
			contains: []string{"<p>ADH acts on the <strong>collecting duct</strong>.</p>"},
		},
		{
			name:     "heading_and_list",
			input:    "## Mechanism\n\n1. V2 receptor\n2. cAMP\n3. Aquaporin-2",
			contains: []string{"<h2>Mechanism</h2>", "<ol>", "<li>cAMP</li>"},
		},
		{
			name:     "gfm_table",
			input:    "| Test | Value |\n|---|---|\n| WBC | 14.2 |",
			contains: []string{"<table>", "<td>WBC</td>"},
		},
		{
			name:     "strikethrough",
			input:    "~~Gastroenteritis~~",
			contains: []string{"<del>Gastroenteritis</del>"},
		},
		{
			name:     "raw_html_is_dropped",
			input:    "Hi <script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			html, err := render.Markdown(tc.input)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tc.excludes {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestMarkdown_Empty(t *testing.T) {
	t.Parallel()

	html, err := render.Markdown("")
	require.NoError(t, err)
	assert.Empty(t, html)
}
