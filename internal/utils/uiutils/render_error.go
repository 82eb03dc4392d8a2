package uiutils

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fabriq-labs/gqlprobe/internal/graphql"
	"github.com/fabriq-labs/gqlprobe/internal/utils/colors"
	"github.com/fabriq-labs/gqlprobe/internal/utils/errutils"
	"github.com/fabriq-labs/gqlprobe/internal/utils/logutils"
	"github.com/kr/text"
)

var ErrNoGitHubToken = errors.Sentinel("No GitHub token is set (do you need to configure one?).")

const noGitHubToken = `# ERROR: No GitHub Token

` + "`gqlprobe`" + ` needs a GitHub personal access token to call the GitHub GraphQL API. Provide one in any of these ways:

1. Set the ` + "`GITHUB_TOKEN`" + ` (or ` + "`GQLPROBE_GITHUB_TOKEN`" + `) environment variable.
2. Add ` + "`GITHUB_TOKEN=...`" + ` to a ` + "`.env`" + ` file in the working directory.
3. Set ` + "`github.token`" + ` in ` + "`~/.config/gqlprobe/config.yaml`" + `.

If GitHub is reached through API Management, also set ` + "`GITHUB_APIM_SUBSCRIPTION_KEY`" + `.
`

// maxBodyLen is how much of an HTTP error body is shown.
const maxBodyLen = 2000

func renderMarkdown(markdownText string) (string, bool) {
	var style string
	if lipgloss.HasDarkBackground() {
		style = styles.DarkStyle
	} else {
		style = styles.LightStyle
	}
	out, err := glamour.Render(markdownText, style)
	if err != nil {
		return "", false
	}
	return out, true
}

// RenderError formats err for the terminal. hint is optional troubleshooting
// markdown that is rendered after the error.
func RenderError(err error, hint string) string {
	if errors.Is(err, ErrNoGitHubToken) {
		if out, ok := renderMarkdown(noGitHubToken); ok {
			return out
		}
		// If there's an error, fallback to the plaintext message.
	}

	var sb strings.Builder
	sb.WriteString(colors.Failure("error: ", err.Error()) + "\n")

	if gqlErr, ok := errutils.As[*graphql.GraphQLError](err); ok {
		for _, detail := range gqlErr.Errors {
			sb.WriteString(text.Indent(formatErrorDetail(detail), "  ") + "\n")
		}
	}
	if httpErr, ok := errutils.As[*graphql.HTTPError](err); ok && len(httpErr.Body) > 0 {
		body := logutils.Truncate(strings.TrimSpace(string(httpErr.Body)), maxBodyLen)
		sb.WriteString(colors.Troubleshooting("Response content:") + "\n")
		sb.WriteString(colors.Faint(text.Indent(body, "    ")) + "\n")
	}
	if hint != "" {
		if out, ok := renderMarkdown(hint); ok {
			sb.WriteString(out)
		} else {
			sb.WriteString(hint)
		}
	}
	return sb.String()
}

func formatErrorDetail(detail graphql.ErrorDetail) string {
	s := "- " + detail.Message
	if len(detail.Path) > 0 {
		parts := make([]string, 0, len(detail.Path))
		for _, p := range detail.Path {
			parts = append(parts, fmt.Sprint(p))
		}
		s += colors.Faint(" (path: " + strings.Join(parts, ".") + ")")
	}
	for _, loc := range detail.Locations {
		s += colors.Faint(fmt.Sprintf(" [line %d, column %d]", loc.Line, loc.Column))
	}
	return s
}
