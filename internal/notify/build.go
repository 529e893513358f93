package notify

import (
	"fmt"
	"os"

	"dcabot/internal/interfaces"
	"dcabot/internal/store"
)

// FromConfig builds the configured targets. A target whose settings are
// incomplete is skipped with a warning; with no usable target the result
// is Log.
func FromConfig(cfg *store.Config) (interfaces.Notifier, []string) {
	var (
		targets  []Named
		warnings []string
	)

	gh := cfg.Notify.GitHub
	if gh.Repo != "" {
		n, err := NewGitHub("", gh.Repo, os.Getenv(gh.TokenEnv), gh.Labels)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("github notifications disabled: %v (token from %s)", err, gh.TokenEnv))
		} else {
			targets = append(targets, Named{Name: "github", Notifier: n})
		}
	}

	tg := cfg.Notify.Telegram
	if tg.ChatID != "" {
		n, err := NewTelegram("", os.Getenv(tg.TokenEnv), tg.ChatID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("telegram notifications disabled: %v (token from %s)", err, tg.TokenEnv))
		} else {
			targets = append(targets, Named{Name: "telegram", Notifier: n})
		}
	}

	if u := cfg.Notify.Webhook.URL; u != "" {
		n, err := NewWebhook(u)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("webhook notifications disabled: %v", err))
		} else {
			targets = append(targets, Named{Name: "webhook", Notifier: n})
		}
	}

	if len(targets) == 0 {
		return Log{}, warnings
	}
	return NewMulti(targets...), warnings
}
