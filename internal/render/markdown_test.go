package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		contains []string
	}{
		{name: "emphasis and list", src: "**Good** start.\n\n- point one\n- point two", contains: []string{"<strong>Good</strong>", "<li>point one</li>"}},
		{name: "hard wraps", src: "line one\nline two", contains: []string{"line one<br>"}},
		{name: "raw html is not passed through", src: "<script>alert(1)</script>", contains: []string{"<!-- raw HTML omitted -->"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Markdown(tc.src)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, "<script>")
		})
	}

	out, err := Markdown("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
