package report

import (
	"fmt"
	"regexp"
	"strings"

	"slack-task-alert/internal/config"
	"slack-task-alert/internal/model"
)

var (
	lineBreakPattern = regexp.MustCompile(`\r\n|\r|\n`)
	autoLinkPattern  = regexp.MustCompile(`<https?://([^>]*)>`)
	entityReplacer   = strings.NewReplacer("<", "&lt;", ">", "&gt;")
)

// Mention renders a Slack user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// Compose renders the report for open. It never fails.
func Compose(open []model.TaskMessage, addressee string, tmpl config.Template, excerptMax int) string {
	mention := Mention(addressee)
	if len(open) == 0 {
		return fill(tmpl.AllClear, mention)
	}
	lines := make([]string, 0, len(open))
	for _, m := range open {
		lines = append(lines, Line(m, excerptMax))
	}
	return fill(tmpl.Header, mention) + "\n\n" + strings.Join(lines, "\n")
}

// Line renders one task as "* #channel <permalink|excerpt>".
func Line(m model.TaskMessage, excerptMax int) string {
	return fmt.Sprintf("* #%s <%s|%s>", m.ChannelName, m.Permalink, Excerpt(m.Text, excerptMax))
}

// Excerpt flattens line breaks, unwraps auto-linked URLs, cuts to max runes
// and only then escapes angle brackets, so an entity is never cut in half.
// max <= 0 disables the cut.
func Excerpt(text string, max int) string {
	s := lineBreakPattern.ReplaceAllString(text, " ")
	s = autoLinkPattern.ReplaceAllString(s, "$1")
	s = truncateRunes(s, max)
	return entityReplacer.Replace(s)
}

func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func fill(tmpl, mention string) string {
	return strings.ReplaceAll(tmpl, config.AddresseePlaceholder, mention)
}
