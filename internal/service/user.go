package service

import (
	"fmt"
	"strings"

	"church-attendance/internal/models"
	"church-attendance/internal/repository"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo, logger: newLogger()}
}

// GetUser returns the user linked to chatID.
func (s *UserService) GetUser(chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// LinkChat attaches a Telegram chat to an existing user and refreshes the
// profile fields that Telegram reports.
func (s *UserService) LinkChat(userID uint, chatID int64, username, firstName, lastName string) (*models.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if other, err := s.repo.GetByChatID(chatID); err != nil {
		return nil, err
	} else if other != nil && other.ID != user.ID {
		return nil, fmt.Errorf("%w: chat %d is linked to another user", ErrConflict, chatID)
	}

	user.ChatID = &chatID
	if username != "" {
		user.Username = username
	}
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}

	if err := s.repo.Update(user); err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// UpdateRole changes the role of the user linked to targetChatID. Only admins may do it.
func (s *UserService) UpdateRole(adminChatID, targetChatID int64, role models.Role) error {
	admin, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if admin == nil || !admin.IsAdmin() {
		return ErrForbidden
	}

	target, err := s.repo.GetByChatID(targetChatID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if target == nil {
		return ErrNotFound
	}

	if err := s.repo.UpdateRole(target.ID, role); err != nil {
		return notFound(err)
	}

	s.logger.WithFields(logrus.Fields{
		"admin":  adminChatID,
		"target": targetChatID,
		"role":   role,
	}).Info("User role changed")

	return nil
}

func (s *UserService) GetAllUsers() ([]*models.User, error) {
	return s.repo.GetAll()
}

func (s *UserService) GetByRoles(roles ...models.Role) ([]*models.User, error) {
	return s.repo.GetByRoles(roles...)
}

func (s *UserService) FormatAllUsers() (string, error) {
	users, err := s.GetAllUsers()
	if err != nil {
		return "", err
	}

	if len(users) == 0 {
		return "📭 No users yet.", nil
	}

	var lines []string
	lines = append(lines, "📋 All users:")
	lines = append(lines, "")

	for i, user := range users {
		info := fmt.Sprintf("%d. %s %s", i+1, roleEmoji(user.Role), user.DisplayName())
		if user.Username != "" {
			info += fmt.Sprintf(" (@%s)", user.Username)
		}
		if user.HasChat() {
			info += fmt.Sprintf(" - ID: %d", *user.ChatID)
		} else if user.Email != nil {
			info += " - " + *user.Email
		}
		lines = append(lines, info)
	}

	total, byRole, err := s.repo.GetStats()
	if err == nil {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("📊 Total users: %d", total))
		lines = append(lines, fmt.Sprintf("👑 Admins: %d", byRole[models.RoleAdmin]))
		lines = append(lines, fmt.Sprintf("🗂 Coordinators: %d", byRole[models.RoleCoordinator]))
		lines = append(lines, fmt.Sprintf("📝 Attendance takers: %d", byRole[models.RoleAttendanceTaker]))
	}

	return strings.Join(lines, "\n"), nil
}

func (s *UserService) IsAdmin(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// CanManage reports whether the chat belongs to an admin or coordinator.
func (s *UserService) CanManage(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.CanManage(), nil
}

// InitializeAdmin makes sure the configured chat belongs to an admin.
func (s *UserService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}

	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		return s.repo.UpdateRole(existing.ID, models.RoleAdmin)
	}

	admin := &models.User{
		ChatID:    &adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
	}
	if err := s.repo.Create(admin); err != nil {
		return err
	}

	s.logger.WithField("chat_id", adminChatID).Info("Base admin created")
	return nil
}

func roleEmoji(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "👑"
	case models.RoleCoordinator:
		return "🗂"
	}
	return "👤"
}
