package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"church-attendance/internal/mail"
	"church-attendance/internal/models"
	"church-attendance/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Invitation
	err  error
}

func (m *fakeMailer) SendInvitation(inv mail.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, inv)
	return m.err
}

func TestInvitationService_InviteAndAccept(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env, 100, models.RoleAdmin)
	mailer := &fakeMailer{}
	svc := NewInvitationService(env.invitations, env.users, mailer, "https://church.example/", 48*time.Hour)

	invitation, err := svc.Invite(admin.ID, " New.Person@Example.com ", models.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, "new.person@example.com", invitation.Email)
	assert.Len(t, invitation.Token, 36)
	assert.Equal(t, "https://church.example/api/invitations/"+invitation.Token+"/accept", svc.Link(invitation))

	svc.Wait()
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "new.person@example.com", mailer.sent[0].To)
	assert.Equal(t, invitation.Token, mailer.sent[0].Token)

	pending, err := svc.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	user, err := svc.Accept(invitation.Token, 200, "newbie", "New", "Person")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, user.Role)
	require.NotNil(t, user.ChatID)
	assert.Equal(t, int64(200), *user.ChatID)

	_, err = svc.Accept(invitation.Token, 201, "", "", "")
	assert.ErrorIs(t, err, ErrConflict)

	pending, err = svc.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInvitationService_InviteRules(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env, 100, models.RoleAdmin)
	taker := createUser(t, env, 101, models.RoleAttendanceTaker)
	svc := NewInvitationService(env.invitations, env.users, nil, "http://localhost", time.Hour)

	_, err := svc.Invite(taker.ID, "a@example.com", models.RoleAttendanceTaker)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Invite(admin.ID, "not-an-email", models.RoleAttendanceTaker)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Invite(admin.ID, "a@example.com", models.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	email := "taken@example.com"
	require.NoError(t, env.users.Create(&models.User{FirstName: "Taken", Email: &email, Role: models.RoleAttendanceTaker}))
	_, err = svc.Invite(admin.ID, email, models.RoleAttendanceTaker)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInvitationService_AcceptFailures(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env, 100, models.RoleAdmin)
	svc := NewInvitationService(env.invitations, env.users, &fakeMailer{err: errors.New("smtp down")}, "http://localhost", time.Hour)

	invitation, err := svc.Invite(admin.ID, "late@example.com", models.RoleAttendanceTaker)
	require.NoError(t, err)
	svc.Wait()

	_, err = svc.Accept("no-such-token", 300, "", "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Accept(invitation.Token, 100, "", "", "")
	assert.ErrorIs(t, err, ErrConflict)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Accept(invitation.Token, 300, "", "", "")
	assert.ErrorIs(t, err, ErrInvitationExpired)
}

func TestInvitationService_AcceptWithoutChat(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env, 100, models.RoleAdmin)
	svc := NewInvitationService(env.invitations, env.users, nil, "http://localhost", time.Hour)

	invitation, err := svc.Invite(admin.ID, "web@example.com", models.RoleAttendanceTaker)
	require.NoError(t, err)

	user, err := svc.Accept(invitation.Token, 0, "", "", "")
	require.NoError(t, err)
	assert.Nil(t, user.ChatID)
	assert.Equal(t, "web", user.FirstName)
}

// staleInvitations serves the invitation as it was before another accept landed.
type staleInvitations struct {
	*repository.GormInvitationRepository
	snapshot *models.Invitation
}

func (r *staleInvitations) GetByToken(token string) (*models.Invitation, error) {
	if r.snapshot != nil && r.snapshot.Token == token {
		copied := *r.snapshot
		return &copied, nil
	}
	return r.GormInvitationRepository.GetByToken(token)
}

func TestInvitationService_ConcurrentAcceptCreatesNoUser(t *testing.T) {
	env := newTestEnv(t)
	admin := createUser(t, env, 100, models.RoleAdmin)
	repo := &staleInvitations{GormInvitationRepository: env.invitations}
	svc := NewInvitationService(repo, env.users, nil, "http://localhost", time.Hour)

	invitation, err := svc.Invite(admin.ID, "race@example.com", models.RoleCoordinator)
	require.NoError(t, err)
	repo.snapshot = invitation

	_, err = svc.Accept(invitation.Token, 200, "", "First", "")
	require.NoError(t, err)

	_, err = svc.Accept(invitation.Token, 201, "", "Second", "")
	assert.ErrorIs(t, err, ErrConflict)

	second, err := env.users.GetByChatID(201)
	require.NoError(t, err)
	assert.Nil(t, second)
}
