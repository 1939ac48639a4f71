package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"church-attendance/internal/mail"
	"church-attendance/internal/models"
	"church-attendance/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type InvitationMailer interface {
	SendInvitation(inv mail.Invitation) error
}

type InvitationService struct {
	repo     repository.InvitationRepository
	users    repository.UserRepository
	mailer   InvitationMailer
	appURL   string
	ttl      time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewInvitationService builds the service. mailer may be nil, in which case
// invitations are only stored and the token has to be passed on by hand.
func NewInvitationService(repo repository.InvitationRepository, users repository.UserRepository, mailer InvitationMailer, appURL string, ttl time.Duration) *InvitationService {
	return &InvitationService{
		repo:     repo,
		users:    users,
		mailer:   mailer,
		appURL:   strings.TrimRight(appURL, "/"),
		ttl:      ttl,
		now:      time.Now,
		validate: validator.New(),
		logger:   newLogger(),
	}
}

// Invite creates an invitation on behalf of an admin and mails the link in the background.
func (s *InvitationService) Invite(inviterID uint, email string, role models.Role) (*models.Invitation, error) {
	inviter, err := s.users.GetByID(inviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check inviter: %w", err)
	}
	if inviter == nil || !inviter.IsAdmin() {
		return nil, ErrForbidden
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	if existing, err := s.users.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: user %s", ErrConflict, email)
	}

	invitation := &models.Invitation{
		Token:       uuid.NewString(),
		Email:       email,
		Role:        role,
		InvitedByID: inviter.ID,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	if err := s.repo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if s.mailer != nil {
		msg := mail.Invitation{
			To:      invitation.Email,
			Role:    string(invitation.Role),
			Link:    s.Link(invitation),
			Token:   invitation.Token,
			Expires: invitation.ExpiresAt.Format("2006-01-02 15:04"),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.mailer.SendInvitation(msg); err != nil {
				s.logger.WithError(err).WithField("email", msg.To).Error("Failed to send invitation mail")
				return
			}
			s.logger.WithField("email", msg.To).Info("Invitation mail sent")
		}()
	}

	return invitation, nil
}

// Link is the URL that accepts the invitation.
func (s *InvitationService) Link(invitation *models.Invitation) string {
	return fmt.Sprintf("%s/api/invitations/%s/accept", s.appURL, invitation.Token)
}

// Accept redeems the token. chatID 0 creates a user without a linked chat.
func (s *InvitationService) Accept(token string, chatID int64, username, firstName, lastName string) (*models.User, error) {
	invitation, err := s.repo.GetByToken(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.IsAccepted() {
		return nil, fmt.Errorf("%w: invitation already used", ErrConflict)
	}
	now := s.now()
	if invitation.IsExpired(now) {
		return nil, ErrInvitationExpired
	}

	if chatID != 0 {
		if existing, err := s.users.GetByChatID(chatID); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%w: chat %d already registered", ErrConflict, chatID)
		}
	}

	if strings.TrimSpace(firstName) == "" {
		firstName, _, _ = strings.Cut(invitation.Email, "@")
	}

	email := invitation.Email
	user := &models.User{
		Email:     &email,
		Username:  username,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Role:      invitation.Role,
	}
	if chatID != 0 {
		user.ChatID = &chatID
	}
	if err := s.repo.Accept(invitation.ID, user, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invitation already used", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("Invitation accepted")

	return user, nil
}

func (s *InvitationService) ListPending() ([]*models.Invitation, error) {
	return s.repo.ListPending(s.now())
}

// Wait blocks until background mail deliveries finish.
func (s *InvitationService) Wait() {
	s.wg.Wait()
}
