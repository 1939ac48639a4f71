package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"church-attendance/internal/models"
	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// requireAdmin replies with an error and returns false unless the chat belongs to an admin.
func (h *Handler) requireAdmin(chatID int64) bool {
	isAdmin, err := h.users.IsAdmin(chatID)
	if err != nil {
		h.send(chatID, "❌ Failed to check permissions: "+err.Error())
		return false
	}
	if !isAdmin {
		h.send(chatID, "❌ Access denied. This command is for administrators only.")
		return false
	}
	return true
}

// requireManager lets admins and coordinators through.
func (h *Handler) requireManager(chatID int64) bool {
	ok, err := h.users.CanManage(chatID)
	if err != nil {
		h.send(chatID, "❌ Failed to check permissions: "+err.Error())
		return false
	}
	if !ok {
		h.send(chatID, "❌ Access denied. This command is for coordinators and administrators.")
		return false
	}
	return true
}

func (h *Handler) showAllUsers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	allUsers, err := h.users.FormatAllUsers()
	if err != nil {
		h.send(chatID, "❌ Failed to list users: "+err.Error())
		return
	}

	h.send(chatID, allUsers)
}

func (h *Handler) promoteUser(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		h.send(chatID, "❌ Usage: /promote <chat_id> [admin|coordinator]")
		return
	}

	targetChatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Invalid chat ID. Use a number.")
		return
	}

	role := models.RoleAdmin
	if len(fields) == 2 {
		parsed, ok := models.ParseRole(fields[1])
		if !ok {
			h.send(chatID, "❌ Unknown role. Use admin, coordinator or attendance_taker.")
			return
		}
		role = parsed
	}

	h.changeRole(chatID, targetChatID, role)
}

func (h *Handler) demoteUser(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	targetChatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.send(chatID, "❌ Usage: /demote <chat_id>")
		return
	}

	if targetChatID == chatID {
		h.send(chatID, "❌ You cannot demote yourself.")
		return
	}

	h.changeRole(chatID, targetChatID, models.RoleAttendanceTaker)
}

func (h *Handler) changeRole(adminChatID, targetChatID int64, role models.Role) {
	err := h.users.UpdateRole(adminChatID, targetChatID, role)
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.send(adminChatID, fmt.Sprintf("❌ No user with chat ID %d.", targetChatID))
	case err != nil:
		h.send(adminChatID, "❌ Failed to change role: "+err.Error())
	default:
		h.send(adminChatID, fmt.Sprintf("✅ User %d is now %s.", targetChatID, role))
	}
}

func (h *Handler) inviteUser(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		h.send(chatID, "❌ Usage: /invite <email> [admin|coordinator|attendance_taker]")
		return
	}

	role := models.RoleAttendanceTaker
	if len(fields) == 2 {
		parsed, ok := models.ParseRole(fields[1])
		if !ok {
			h.send(chatID, "❌ Unknown role. Use admin, coordinator or attendance_taker.")
			return
		}
		role = parsed
	}

	admin, err := h.users.GetUser(chatID)
	if err != nil {
		h.send(chatID, "❌ Failed to load your profile: "+err.Error())
		return
	}

	invitation, err := h.invitations.Invite(admin.ID, fields[0], role)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.send(chatID, "❌ "+err.Error())
		return
	case errors.Is(err, service.ErrConflict):
		h.send(chatID, "⚠️ A user with this email already exists.")
		return
	case err != nil:
		h.send(chatID, "❌ Failed to create invitation: "+err.Error())
		return
	}

	h.send(chatID, fmt.Sprintf("✉️ Invitation for %s (%s) created.\n\nToken: %s\nExpires: %s\n\nThey can send /start %s to the bot.",
		invitation.Email, invitation.Role, invitation.Token,
		invitation.ExpiresAt.In(h.gatherings.Location()).Format("2006-01-02 15:04"), invitation.Token))
}

func (h *Handler) sendDigest(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sent, err := h.digest.RunOnce(ctx)
	if err != nil {
		h.send(chatID, "❌ Failed to send digest: "+err.Error())
		return
	}

	h.send(chatID, fmt.Sprintf("📬 Digest sent to %d chat(s).", sent))
}
