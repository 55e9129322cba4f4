package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultSearchMaxCount   = 200
	DefaultExcerptMaxLength = 60
	DefaultLocale           = "en"
)

// Runtime is the validated configuration of one run. It is built once at
// startup and passed by value to every component.
type Runtime struct {
	// UserToken is a user token with search:read; it also defines whose
	// completion reactions count.
	UserToken string
	// BotToken posts the report.
	BotToken string
	APIURL   string

	ActorID       string
	Addressee     string
	TaskReaction  string
	DoneReactions []string
	ReportChannel string

	SearchMaxCount   int
	ExcerptMaxLength int

	Locale        string
	TemplatesFile string
	BotName       string
	Template      Template
}

// Error reports every configuration problem found during loading.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr)
}

// LoadDotEnv loads key=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func LoadRuntime() (Runtime, error) {
	var problems []string
	searchMax, err := readIntEnv("SEARCH_MAX_COUNT", DefaultSearchMaxCount)
	if err != nil {
		problems = append(problems, err.Error())
	}
	excerptMax, err := readIntEnv("EXCERPT_MAX_LENGTH", DefaultExcerptMaxLength)
	if err != nil {
		problems = append(problems, err.Error())
	}
	actor := strings.TrimSpace(os.Getenv("SLACK_USER_ID"))
	cfg := Runtime{
		UserToken:        strings.TrimSpace(os.Getenv("SLACK_USER_TOKEN")),
		BotToken:         strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
		APIURL:           strings.TrimSpace(os.Getenv("SLACK_API_URL")),
		ActorID:          actor,
		Addressee:        getenvDefault("TASK_ALERT_ADDRESSEE", actor),
		TaskReaction:     NormalizeReaction(os.Getenv("TASK_REACTION")),
		DoneReactions:    SplitReactions(os.Getenv("DONE_REACTIONS")),
		ReportChannel:    strings.TrimSpace(os.Getenv("REPORT_CHANNEL")),
		SearchMaxCount:   searchMax,
		ExcerptMaxLength: excerptMax,
		Locale:           getenvDefault("TASK_ALERT_LOCALE", DefaultLocale),
		TemplatesFile:    strings.TrimSpace(os.Getenv("TASK_ALERT_TEMPLATES")),
		BotName:          strings.TrimSpace(os.Getenv("TASK_ALERT_BOT_NAME")),
	}

	templates := BuiltinTemplates()
	if cfg.TemplatesFile != "" {
		loaded, err := LoadTemplates(cfg.TemplatesFile)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			templates = MergeTemplates(templates, loaded)
		}
	}
	if tmpl, ok := templates[cfg.Locale]; ok {
		cfg.Template = tmpl
		if cfg.BotName != "" {
			cfg.Template.BotName = cfg.BotName
		}
	}

	problems = append(problems, cfg.problems()...)
	if len(problems) > 0 {
		return Runtime{}, &Error{Problems: problems}
	}
	return cfg, nil
}

// Validate checks a Runtime that was built by hand rather than loaded.
func (r Runtime) Validate() error {
	if p := r.problems(); len(p) > 0 {
		return &Error{Problems: p}
	}
	return nil
}

func (r Runtime) problems() []string {
	var out []string
	required := []struct{ key, val string }{
		{"SLACK_USER_TOKEN", r.UserToken},
		{"SLACK_BOT_TOKEN", r.BotToken},
		{"SLACK_USER_ID", r.ActorID},
		{"TASK_REACTION", r.TaskReaction},
		{"REPORT_CHANNEL", r.ReportChannel},
	}
	for _, f := range required {
		if f.val == "" {
			out = append(out, f.key+" must be set")
		}
	}
	if len(r.DoneReactions) == 0 {
		out = append(out, "DONE_REACTIONS must list at least one reaction")
	}
	if r.Addressee == "" && r.ActorID != "" {
		out = append(out, "TASK_ALERT_ADDRESSEE must not be blank")
	}
	if r.SearchMaxCount <= 0 {
		out = append(out, fmt.Sprintf("SEARCH_MAX_COUNT must be positive, got %d", r.SearchMaxCount))
	}
	if r.ExcerptMaxLength <= 0 {
		out = append(out, fmt.Sprintf("EXCERPT_MAX_LENGTH must be positive, got %d", r.ExcerptMaxLength))
	}
	if !r.Template.complete() {
		out = append(out, fmt.Sprintf("no complete report template for locale %q", r.Locale))
	}
	return out
}

// NormalizeReaction strips whitespace and the surrounding colons Slack shows
// around emoji names, so ":white_check_mark:" and "white_check_mark" match.
func NormalizeReaction(v string) string {
	return strings.Trim(strings.TrimSpace(v), ":")
}

// SplitReactions parses a comma separated reaction list, dropping blanks and
// duplicates while keeping the first-seen order.
func SplitReactions(v string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(v, ",") {
		name := NormalizeReaction(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func readIntEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
