package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"church-attendance/internal/report"
	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) showAbsences(message *tgbotapi.Message, args string) {
	summary, ok := h.summary(message.Chat.ID, args)
	if !ok {
		return
	}
	h.send(message.Chat.ID, h.reports.FormatAbsences(summary))
}

func (h *Handler) showVisitors(message *tgbotapi.Message, args string) {
	summary, ok := h.summary(message.Chat.ID, args)
	if !ok {
		return
	}
	h.send(message.Chat.ID, h.reports.FormatVisitors(summary))
}

func (h *Handler) summary(chatID int64, args string) (report.Summary, bool) {
	if !h.requireManager(chatID) {
		return report.Summary{}, false
	}

	ids, err := parseIDs(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return report.Summary{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := h.reports.Summary(ctx, ids, time.Now().In(h.gatherings.Location()))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.send(chatID, "❌ Gathering not found.")
		} else {
			h.send(chatID, "❌ Failed to build report: "+err.Error())
		}
		return report.Summary{}, false
	}
	return summary, true
}

// parseIDs reads space or comma separated gathering ids.
func parseIDs(args string) ([]uint, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' '
	})

	ids := make([]uint, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseUint(f, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid gathering id %q", f)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
