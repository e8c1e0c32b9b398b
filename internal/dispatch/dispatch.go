// Package dispatch delivers listings to a chat channel.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vagabot-engine/internal/domain"
)

// Dispatcher sends listings one at a time; Send returns only after the
// channel confirmed the message, so a nil error is safe to commit on.
type Dispatcher interface {
	Send(ctx context.Context, l domain.Listing) error
	Status(ctx context.Context, text string) error
}

// FormatListing renders one listing as a Telegram HTML message.
func FormatListing(l domain.Listing) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeHTML, s) }

	var b strings.Builder
	fmt.Fprintf(&b, "💼 <b>%s</b>\n", esc(l.Title))
	if l.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n", esc(l.Company))
	}
	if l.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", esc(l.Location))
	}
	if l.ContractType != "" {
		fmt.Fprintf(&b, "📋 %s\n", esc(l.ContractType))
	}
	if l.PublishedAt != nil {
		fmt.Fprintf(&b, "📅 %s\n", l.PublishedAt.Format("02/01/2006"))
	}
	fmt.Fprintf(&b, "🌐 %s\n", esc(string(l.Source)))
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Ver vaga</a>", esc(l.URL))
	return b.String()
}
