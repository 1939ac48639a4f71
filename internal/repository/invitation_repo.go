package repository

import (
	"errors"
	"time"

	"church-attendance/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(invitation *models.Invitation) error
	GetByToken(token string) (*models.Invitation, error)
	Accept(id uint, user *models.User, at time.Time) error
	ListPending(now time.Time) ([]*models.Invitation, error)
}

type GormInvitationRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormInvitationRepository(db *gorm.DB) (*GormInvitationRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Invitation{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate invitations table")
		return nil, err
	}

	return &GormInvitationRepository{db: db, logger: logger}, nil
}

func (r *GormInvitationRepository) Create(invitation *models.Invitation) error {
	if err := r.db.Create(invitation).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create invitation")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":         invitation.ID,
		"role":       invitation.Role,
		"expires_at": invitation.ExpiresAt.Format("2006-01-02 15:04"),
	}).Info("Invitation created")

	return nil
}

func (r *GormInvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	result := r.db.Where("token = ?", token).First(&invitation)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &invitation, nil
}

// Accept creates the invited user and stamps the invitation in one
// transaction. An invitation that is no longer pending yields ErrNotFound and
// no user is created.
func (r *GormInvitationRepository) Accept(id uint, user *models.User, at time.Time) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND accepted_at IS NULL", id).
			Updates(map[string]interface{}{
				"accepted_at":      at,
				"accepted_user_id": user.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("id", id).Error("Failed to accept invitation")
		user.ID = 0
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      id,
		"user_id": user.ID,
	}).Info("Invitation accepted")

	return nil
}

func (r *GormInvitationRepository) ListPending(now time.Time) ([]*models.Invitation, error) {
	var invitations []*models.Invitation
	result := r.db.Where("accepted_at IS NULL AND expires_at > ?", now).
		Order("created_at DESC").
		Find(&invitations)

	if result.Error != nil {
		return nil, result.Error
	}

	return invitations, nil
}
