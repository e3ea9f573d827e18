package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"cinewatch/internal/matching"
)

// Telegram sends HTML-formatted messages through the Bot API.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *resty.Client
}

type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram builds a sender for chatID using bot token.
func NewTelegram(baseURL, token, chatID string, timeout time.Duration) *Telegram {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Telegram{baseURL: baseURL, token: token, chatID: chatID, client: client}
}

func (*Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	var result telegramResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(telegramRequest{
			ChatID:                t.chatID,
			Text:                  telegramText(msg),
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		}).
		SetResult(&result).
		SetError(&result).
		Post(t.baseURL + "/bot" + t.token + "/sendMessage")
	if err != nil {
		// The token is part of the URL; keep it out of logs.
		return fmt.Errorf("send telegram message: %s", strings.ReplaceAll(err.Error(), t.token, "***"))
	}
	if resp.IsError() || !result.OK {
		desc := strings.TrimSpace(result.Description)
		if desc == "" {
			desc = resp.Status()
		}
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode(), desc)
	}
	return nil
}

// telegramMaxRunes is the Bot API limit on message text. Raw HTML is never
// shorter than the rendered text, so budgeting on it stays under the limit.
const telegramMaxRunes = 4096

func telegramText(msg Message) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(truncateRunes(msg.Title, 256)))
	b.WriteString("</b>\n")
	used := utf8.RuneCountInString(b.String())
	if msg.Summary == nil || len(msg.Summary.Matches) == 0 {
		b.WriteString(html.EscapeString(truncateRunes(msg.Text, telegramMaxRunes-used)))
		return b.String()
	}

	matches := sortedMatches(msg.Summary.Matches)
	// Room for the "+N more" line.
	reserve := utf8.RuneCountInString(telegramMore(len(matches)))
	for i, m := range matches {
		line := "\n• " + telegramMatch(m)
		n := utf8.RuneCountInString(line)
		budget := telegramMaxRunes - used
		if i < len(matches)-1 {
			budget -= reserve
		}
		if n > budget {
			b.WriteString(telegramMore(len(matches) - i))
			break
		}
		b.WriteString(line)
		used += n
	}
	return b.String()
}

func telegramMore(n int) string {
	return fmt.Sprintf("\n… +%d more", n)
}

// truncateRunes shortens s to at most limit runes, marking the cut with an
// ellipsis.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

func telegramMatch(m matching.MatchResult) string {
	listing := html.EscapeString(m.Listing.Title)
	if url := strings.TrimSpace(m.Listing.SourceURL); url != "" {
		listing = `<a href="` + html.EscapeString(url) + `">` + listing + `</a>`
	}
	return fmt.Sprintf("<b>%s</b>: %s (%s)", html.EscapeString(m.Entry.Title), listing, formatScore(m.Score))
}
