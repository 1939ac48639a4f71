package handler

import (
	"strings"
	"sync"
	"testing"
	"time"

	"church-attendance/internal/config"
	"church-attendance/internal/database"
	"church-attendance/internal/models"
	"church-attendance/internal/repository"
	"church-attendance/internal/schedule"
	"church-attendance/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu      sync.Mutex
	replies map[int64][]string
}

func (m *fakeMessenger) Notify(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replies == nil {
		m.replies = make(map[int64][]string)
	}
	m.replies[chatID] = append(m.replies[chatID], text)
	return nil
}

func (m *fakeMessenger) last(chatID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.replies[chatID]
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

type testBot struct {
	handler     *Handler
	messenger   *fakeMessenger
	users       *repository.GormUserRepository
	gatherings  *service.GatheringService
	invitations *service.InvitationService
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(config.DriverSQLite, "file:bot_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	users, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	gatheringRepo, err := repository.NewGormGatheringRepository(db)
	require.NoError(t, err)
	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	require.NoError(t, err)
	invitationRepo, err := repository.NewGormInvitationRepository(db)
	require.NoError(t, err)

	messenger := &fakeMessenger{}
	userService := service.NewUserService(users)
	gatherings := service.NewGatheringService(gatheringRepo, time.UTC, 3)
	reports := service.NewReportService(gatherings, service.NewAttendanceService(gatherings, attendanceRepo))
	invitations := service.NewInvitationService(invitationRepo, users, nil, "http://localhost", time.Hour)
	digest := service.NewDigestService(reports, userService, messenger, time.UTC)

	return &testBot{
		handler:     NewHandler(messenger, userService, gatherings, reports, invitations, digest),
		messenger:   messenger,
		users:       users,
		gatherings:  gatherings,
		invitations: invitations,
	}
}

func (b *testBot) addUser(t *testing.T, chatID int64, role models.Role) *models.User {
	t.Helper()
	user := &models.User{FirstName: "User", ChatID: &chatID, Role: role}
	require.NoError(t, b.users.Create(user))
	return user
}

// say feeds one message through HandleUpdates and returns the last reply.
func (b *testBot) say(chatID int64, text string) string {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Test"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}

	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{Message: msg}
	close(updates)
	b.handler.HandleUpdates(updates)

	return b.messenger.last(chatID)
}

func TestHandler_GeneralCommands(t *testing.T) {
	b := newTestBot(t)

	assert.Contains(t, b.say(1, "/help"), "Available commands")
	assert.Contains(t, b.say(1, "/frobnicate"), "Unknown command")
	assert.Contains(t, b.say(1, "hello there"), "/help")
	assert.Contains(t, b.say(1, "/start"), "Ask an administrator for an invitation")
	assert.Contains(t, b.say(1, "/gatherings"), "not registered")
}

func TestHandler_StartAcceptsInvitation(t *testing.T) {
	b := newTestBot(t)
	admin := b.addUser(t, 1, models.RoleAdmin)

	invitation, err := b.invitations.Invite(admin.ID, "new@example.com", models.RoleCoordinator)
	require.NoError(t, err)

	assert.Contains(t, b.say(2, "/start nope"), "Invitation not found")
	assert.Contains(t, b.say(2, "/start "+invitation.Token), "You joined as coordinator")
	assert.Contains(t, b.say(3, "/start "+invitation.Token), "already used")
	assert.Contains(t, b.say(2, "/start"), "Welcome back")
}

func TestHandler_AdminCommands(t *testing.T) {
	b := newTestBot(t)
	b.addUser(t, 1, models.RoleAdmin)
	b.addUser(t, 2, models.RoleAttendanceTaker)

	assert.Contains(t, b.say(2, "/allusers"), "Access denied")
	assert.Contains(t, b.say(1, "/allusers"), "Total users: 2")

	assert.Contains(t, b.say(1, "/promote abc"), "Invalid chat ID")
	assert.Contains(t, b.say(1, "/promote 2 owner"), "Unknown role")
	assert.Contains(t, b.say(1, "/promote 2 coordinator"), "is now coordinator")
	assert.Contains(t, b.say(1, "/promote 99"), "No user with chat ID 99")

	assert.Contains(t, b.say(1, "/demote 1"), "cannot demote yourself")
	assert.Contains(t, b.say(1, "/demote 2"), "is now attendance_taker")

	assert.Contains(t, b.say(1, "/invite"), "Usage")
	assert.Contains(t, b.say(1, "/invite not-an-email"), "❌")
	assert.Contains(t, b.say(1, "/invite helper@example.com coordinator"), "/start ")

	assert.Contains(t, b.say(1, "/digest"), "Digest sent to")
}

func TestHandler_GatheringsAndReports(t *testing.T) {
	b := newTestBot(t)
	b.addUser(t, 1, models.RoleCoordinator)
	b.addUser(t, 2, models.RoleAttendanceTaker)

	g, err := b.gatherings.Create(service.GatheringInput{
		Name: "Sunday Service",
		Schedule: schedule.Schedule{
			Kind:      schedule.KindRegular,
			DayOfWeek: "Sunday",
			Frequency: schedule.FrequencyWeekly,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, b.say(2, "/gatherings"), "Sunday Service")
	assert.Contains(t, b.say(2, "/upcoming"), "Usage")
	assert.Contains(t, b.say(2, "/upcoming 42"), "Gathering not found")

	upcoming := b.say(2, "/upcoming 1")
	assert.Contains(t, upcoming, "Upcoming: "+g.Name)
	assert.Contains(t, upcoming, "(Sunday)")

	assert.Contains(t, b.say(2, "/absences"), "Access denied")
	assert.Contains(t, b.say(1, "/absences"), "Nobody has missed")
	assert.Contains(t, b.say(1, "/visitors 1"), "No repeat visitors")
	assert.Contains(t, b.say(1, "/absences 7"), "Gathering not found")
	assert.Contains(t, b.say(1, "/absences x"), "invalid gathering id")
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint
		wantErr bool
	}{
		{"", []uint{}, false},
		{"1", []uint{1}, false},
		{"1,2 3", []uint{1, 2, 3}, false},
		{" 4 , 5 ", []uint{4, 5}, false},
		{"0", nil, true},
		{"1,abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIDs(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
