package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-task-alert/internal/config"
	"slack-task-alert/internal/model"
)

var en = config.BuiltinTemplates()["en"]

func msg(channel, ts, text string) model.TaskMessage {
	return model.TaskMessage{
		ID:          model.MessageIdentity{ChannelID: "C" + channel, Timestamp: ts},
		Permalink:   "https://example.slack.com/archives/C" + channel + "/p" + ts,
		Text:        text,
		ChannelName: channel,
	}
}

func TestComposeAllClear(t *testing.T) {
	got := Compose(nil, "U123", en, 60)
	assert.Equal(t, "<@U123> All tasks completed :tada:", got)
	assert.Equal(t, got, Compose([]model.TaskMessage{}, "U123", en, 60))
}

func TestComposeItemized(t *testing.T) {
	open := []model.TaskMessage{
		msg("dev", "1", "fix the build"),
		msg("ops", "3", "rotate keys"),
	}
	got := Compose(open, "U123", en, 60)
	want := "<@U123> task list\n\n" +
		"* #dev <https://example.slack.com/archives/Cdev/p1|fix the build>\n" +
		"* #ops <https://example.slack.com/archives/Cops/p3|rotate keys>"
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestComposeLocale(t *testing.T) {
	ja := config.BuiltinTemplates()["ja"]
	assert.Equal(t, "<@U1> すべてのタスクが完了しました :tada:", Compose(nil, "U1", ja, 60))
	assert.True(t, strings.HasPrefix(Compose([]model.TaskMessage{msg("a", "1", "x")}, "U1", ja, 60), "<@U1> 未完了タスク一覧\n\n* #a "))
}

func TestExcerpt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"empty", "", 60, ""},
		{"short untouched", "deploy v2", 60, "deploy v2"},
		{"escape", "a < b > c", 60, "a &lt; b &gt; c"},
		{"line breaks", "one\r\ntwo\nthree\rfour", 60, "one two three four"},
		{"blank lines", "a\n\nb", 60, "a  b"},
		{"auto link", "check <https://example.com/x> please", 60, "check example.com/x please"},
		{"auto link http", "<http://example.com>", 60, "example.com"},
		{"labelled link", "<https://example.com/x|docs>", 60, "example.com/x|docs"},
		{"only link", "<https://>", 60, ""},
		{"mention kept and escaped", "ping <@U1>", 60, "ping &lt;@U1&gt;"},
		{"truncate", "abcdefghij", 4, "abcd"},
		{"truncate before escape", "ab<<<<", 3, "ab&lt;"},
		{"multibyte", "日本語のテキスト", 3, "日本語"},
		{"no limit", "abcdefghij", 0, "abcdefghij"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Excerpt(tc.in, tc.max))
		})
	}
}

func TestExcerptVisibleLengthWithinCap(t *testing.T) {
	in := strings.Repeat("<x> ", 40) + "\n" + strings.Repeat("y", 30)
	got := Excerpt(in, 60)
	unescaped := strings.NewReplacer("&lt;", "<", "&gt;", ">").Replace(got)
	require.LessOrEqual(t, utf8.RuneCountInString(unescaped), 60)
	// no dangling partial entity at the end
	assert.False(t, strings.HasSuffix(got, "&"))
	assert.False(t, strings.HasSuffix(got, "&l"))
	assert.False(t, strings.HasSuffix(got, "&lt"))
	assert.False(t, strings.HasSuffix(got, "&g"))
	assert.False(t, strings.HasSuffix(got, "&gt"))
}

func TestLineURLExcerpt(t *testing.T) {
	m := msg("general", "1", "check <https://example.com/x> please")
	got := Line(m, 40)
	assert.Contains(t, got, "example.com/x")
	assert.NotContains(t, got, "<https://example.com/x>")
}

func TestComposeEndToEndOrder(t *testing.T) {
	open := []model.TaskMessage{msg("one", "1", "T1"), msg("three", "3", "T3")}
	lines := strings.Split(Compose(open, "U9", en, 60), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "", lines[1])
	assert.Contains(t, lines[2], "|T1>")
	assert.Contains(t, lines[3], "|T3>")
}
