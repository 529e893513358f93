package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dcabot/internal/api"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API.
type Telegram struct {
	client *api.Client
	token  string
	chatID string
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Telegram caps messages at 4096 characters.
const telegramMaxText = 4096

func NewTelegram(baseURL, token, chatID string) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	if chatID == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	if baseURL == "" {
		baseURL = telegramAPI
	}
	return &Telegram{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(15*time.Second),
		),
		token:  token,
		chatID: chatID,
	}, nil
}

// Publish sends title and body as plain text; report markdown is not
// Telegram-safe without escaping.
func (tg *Telegram) Publish(ctx context.Context, title, body string) error {
	text := title + "\n\n" + body
	if r := []rune(text); len(r) > telegramMaxText {
		text = string(r[:telegramMaxText-1]) + "…"
	}
	resp, err := tg.client.POST(ctx, "/bot"+tg.token+"/sendMessage", telegramMessage{
		ChatID:                tg.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", redact(err, tg.token))
	}
	var tr telegramResponse
	if err := resp.ParseJSON(&tr); err != nil {
		return err
	}
	if !tr.OK {
		return fmt.Errorf("telegram api error: %s", tr.Description)
	}
	return nil
}

// redact strips the bot token, which is part of the URL, from err.
func redact(err error, token string) error {
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "***"))
}
