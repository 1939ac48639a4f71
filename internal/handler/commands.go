package handler

import (
	"errors"
	"fmt"
	"strings"

	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(message, args)
	case "help":
		h.sendHelpMessage(message)

	case "gatherings":
		h.listGatherings(message)
	case "upcoming":
		h.showUpcoming(message, args)

	// Reports (admins and coordinators)
	case "absences":
		h.showAbsences(message, args)
	case "visitors":
		h.showVisitors(message, args)

	// Administration
	case "allusers":
		h.showAllUsers(message)
	case "promote":
		h.promoteUser(message, args)
	case "demote":
		h.demoteUser(message, args)
	case "invite":
		h.inviteUser(message, args)
	case "digest":
		h.sendDigest(message)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.send(message.Chat.ID, "❌ Unknown command. Use /help to see the list of commands.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	token := strings.TrimSpace(args)

	if token != "" {
		var username, first, last string
		if message.From != nil {
			username, first, last = message.From.UserName, message.From.FirstName, message.From.LastName
		}

		user, err := h.invitations.Accept(token, chatID, username, first, last)
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.send(chatID, "❌ Invitation not found. Check the token and try again.")
		case errors.Is(err, service.ErrInvitationExpired):
			h.send(chatID, "⌛ This invitation has expired. Ask an administrator for a new one.")
		case errors.Is(err, service.ErrConflict):
			h.send(chatID, "⚠️ This invitation was already used or your chat is already registered.")
		case err != nil:
			h.send(chatID, "❌ Failed to accept invitation: "+err.Error())
		default:
			h.send(chatID, fmt.Sprintf("✅ Welcome, %s! You joined as %s.\n\nUse /help to see the list of commands.", user.DisplayName(), user.Role))
		}
		return
	}

	user, err := h.users.GetUser(chatID)
	if err != nil {
		h.send(chatID, "👋 Hello! This bot is for church attendance teams.\n\nAsk an administrator for an invitation and send /start <token> to join.")
		return
	}

	h.send(chatID, fmt.Sprintf("👋 Welcome back, %s!\n\nUse /help to see the list of commands.", user.DisplayName()))
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Available commands:

⛪ Gatherings:
/gatherings - List active gatherings
/upcoming <id> - Upcoming dates of a gathering

📊 Reports (coordinators):
/absences [id...] - Consecutive absences, families grouped
/visitors [id...] - Repeat visitors over the last six weeks

👑 Administration:
/allusers - List users
/promote <chat_id> [role] - Change a user's role (admin by default)
/demote <chat_id> - Make a user an attendance taker
/invite <email> [role] - Invite someone by email
/digest - Send the digest now

🛠 Utilities:
/start [token] - Start, or accept an invitation
/help - Show this message`

	h.send(message.Chat.ID, text)
}
