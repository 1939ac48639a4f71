package handler

import (
	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Messenger sends text replies. *telegram.Client satisfies it.
type Messenger interface {
	Notify(chatID int64, text string) error
}

type Handler struct {
	messenger   Messenger
	users       *service.UserService
	gatherings  *service.GatheringService
	reports     *service.ReportService
	invitations *service.InvitationService
	digest      *service.DigestService
	logger      *logrus.Logger
}

func NewHandler(
	messenger Messenger,
	users *service.UserService,
	gatherings *service.GatheringService,
	reports *service.ReportService,
	invitations *service.InvitationService,
	digest *service.DigestService,
) *Handler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &Handler{
		messenger:   messenger,
		users:       users,
		gatherings:  gatherings,
		reports:     reports,
		invitations: invitations,
		digest:      digest,
		logger:      logger,
	}
}

func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			continue
		}
		h.handleMessage(update.Message)
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.Infof("[%s] %s", username, message.Text)

	if message.IsCommand() {
		h.handleCommand(message)
		return
	}

	h.send(message.Chat.ID, "Use /help to see what I can do.")
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.messenger.Notify(chatID, text); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
