package handler

import (
	"errors"
	"strconv"
	"strings"

	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// requireUser lets any registered user through.
func (h *Handler) requireUser(chatID int64) bool {
	if _, err := h.users.GetUser(chatID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.send(chatID, "❌ You are not registered. Ask an administrator for an invitation.")
		} else {
			h.send(chatID, "❌ Failed to check permissions: "+err.Error())
		}
		return false
	}
	return true
}

func (h *Handler) listGatherings(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireUser(chatID) {
		return
	}

	gatherings, err := h.gatherings.List(true)
	if err != nil {
		h.send(chatID, "❌ Failed to list gatherings: "+err.Error())
		return
	}

	h.send(chatID, h.gatherings.FormatGatherings(gatherings))
}

func (h *Handler) showUpcoming(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireUser(chatID) {
		return
	}

	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.send(chatID, "❌ Usage: /upcoming <gathering_id>\n\nSee /gatherings for ids.")
		return
	}

	gathering, err := h.gatherings.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.send(chatID, "❌ Gathering not found.")
		} else {
			h.send(chatID, "❌ Failed to load gathering: "+err.Error())
		}
		return
	}

	occurrences, err := h.gatherings.Occurrences(gathering.ID, h.gatherings.Today(), 0)
	if err != nil {
		h.send(chatID, "⚠️ The schedule of this gathering is misconfigured: "+err.Error())
		return
	}

	h.send(chatID, h.gatherings.FormatOccurrences(gathering, occurrences))
}
