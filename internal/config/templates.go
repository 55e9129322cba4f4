package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AddresseePlaceholder is replaced with a Slack mention of the addressee.
const AddresseePlaceholder = "{addressee}"

// Template holds the fixed strings of a report for one locale.
type Template struct {
	AllClear string `yaml:"all_clear"`
	Header   string `yaml:"header"`
	BotName  string `yaml:"bot_name"`
}

func (t Template) complete() bool {
	return strings.TrimSpace(t.AllClear) != "" && strings.TrimSpace(t.Header) != ""
}

func BuiltinTemplates() map[string]Template {
	return map[string]Template{
		"en": {
			AllClear: AddresseePlaceholder + " All tasks completed :tada:",
			Header:   AddresseePlaceholder + " task list",
			BotName:  "task alert bot",
		},
		"ja": {
			AllClear: AddresseePlaceholder + " すべてのタスクが完了しました :tada:",
			Header:   AddresseePlaceholder + " 未完了タスク一覧",
			BotName:  "タスク通知bot",
		},
	}
}

type templateFile struct {
	Locales map[string]Template `yaml:"locales"`
}

// LoadTemplates reads a YAML file of the form
//
//	locales:
//	  en:
//	    all_clear: "{addressee} nothing left"
//	    header: "{addressee} open tasks"
//	    bot_name: "tasks"
func LoadTemplates(path string) (map[string]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	if len(f.Locales) == 0 {
		return nil, fmt.Errorf("templates %s must contain a locales map", path)
	}
	return f.Locales, nil
}

// MergeTemplates overlays field by field; blank override fields keep the base
// value so a file may change just one string of a builtin locale.
func MergeTemplates(base, override map[string]Template) map[string]Template {
	out := make(map[string]Template, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		cur := out[k]
		if v.AllClear != "" {
			cur.AllClear = v.AllClear
		}
		if v.Header != "" {
			cur.Header = v.Header
		}
		if v.BotName != "" {
			cur.BotName = v.BotName
		}
		out[k] = cur
	}
	return out
}
