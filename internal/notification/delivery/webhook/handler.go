// Package webhook serves the Telegram bot commands. Every command is a
// read-only summary of current alert state; the bot never mutates anything.
package webhook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	alertquery "github.com/pharmacore/pharmacy-api/internal/alert/usecase/query"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
	"github.com/pharmacore/pharmacy-api/pkg/logger"
)

// maxAlertsPerReply caps the /alerts listing so replies stay readable
const maxAlertsPerReply = 10

// update is the slice of the Telegram update payload the bot needs
type update struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Handler answers Telegram bot commands
type Handler struct {
	client       *telegram.Client
	listHandler  *alertquery.ListAlertsHandler
	statsHandler *alertquery.AlertStatsHandler
}

// NewHandler creates a webhook handler
func NewHandler(client *telegram.Client, listHandler *alertquery.ListAlertsHandler, statsHandler *alertquery.AlertStatsHandler) *Handler {
	return &Handler{client: client, listHandler: listHandler, statsHandler: statsHandler}
}

// RegisterRoutes registers the webhook route
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/telegram/webhook", h.HandleUpdate)
}

// HandleUpdate handles POST /telegram/webhook. Telegram retries on
// non-200 responses, so parse failures are acknowledged and dropped.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	var upd update
	if err := c.BodyParser(&upd); err != nil {
		logger.Logger.Debug().Err(err).Msg("Ignoring unparseable telegram update")
		return c.SendStatus(fiber.StatusOK)
	}
	if upd.Message.Chat.ID == 0 || upd.Message.Text == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	chatID := strconv.FormatInt(upd.Message.Chat.ID, 10)
	cmd := strings.Fields(upd.Message.Text)[0]
	// Commands in groups arrive as /cmd@botname
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	var reply string
	switch cmd {
	case "/start":
		reply = fmt.Sprintf("👋 <b>Pharmacy Alert Bot</b>\n\nYour chat id is <code>%s</code>.\nSave it in your alert preferences to receive personal notifications here.\n\nUse /help to see available commands.", chatID)
	case "/alerts":
		reply = h.alertsReply(c)
	case "/stats":
		reply = h.statsReply(c)
	case "/help":
		reply = "Available commands:\n/alerts - unresolved alerts\n/stats - alert statistics\n/start - show your chat id\n/help - this message"
	default:
		reply = "Unknown command. Use /help to see available commands."
	}

	if err := h.client.SendMessage(c.UserContext(), chatID, reply); err != nil {
		logger.Logger.Warn().Err(err).Str("chat_id", chatID).Msg("Failed to send bot reply")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) alertsReply(c *fiber.Ctx) string {
	alerts, err := h.listHandler.Unresolved(c.UserContext())
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load unresolved alerts for bot")
		return "Failed to load alerts, try again later."
	}
	if len(alerts) == 0 {
		return "✅ No unresolved alerts."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%d unresolved alerts</b>\n\n", len(alerts))
	for i, a := range alerts {
		if i == maxAlertsPerReply {
			fmt.Fprintf(&sb, "... and %d more", len(alerts)-maxAlertsPerReply)
			break
		}
		fmt.Fprintf(&sb, "%s %s\n", telegram.SeverityEmoji(a.Severity), a.Title)
	}
	return sb.String()
}

func (h *Handler) statsReply(c *fiber.Ctx) string {
	stats, err := h.statsHandler.Handle(c.UserContext())
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load alert stats for bot")
		return "Failed to load statistics, try again later."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Alert statistics</b>\n\nTotal: %d\nUnresolved: %d\nResolved: %d\n", stats.Total, stats.Unresolved, stats.Resolved)
	for _, sev := range []string{alertdomain.SeverityCritical, alertdomain.SeverityHigh, alertdomain.SeverityMedium, alertdomain.SeverityLow} {
		if n := stats.BySeverity[sev]; n > 0 {
			fmt.Fprintf(&sb, "%s %s: %d\n", telegram.SeverityEmoji(sev), sev, n)
		}
	}
	return sb.String()
}
