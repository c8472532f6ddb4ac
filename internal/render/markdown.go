package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ColorsEnabled returns whether terminal colors should be used.
// It returns false if the NO_COLOR environment variable is set (any value)
// or if TERM is set to "dumb".
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// notesIndent is the left margin detail sections are drawn with.
const notesIndent = 2

// RenderMarkdown renders ticket notes for terminal display, wrapped to the
// terminal width. When colors are disabled, it returns the content
// unmodified.
func RenderMarkdown(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	if !ColorsEnabled() {
		return content, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(max(terminalWidth()-notesIndent*2, 20)),
	)
	if err != nil {
		return content, err
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return strings.TrimSpace(rendered), nil
}
