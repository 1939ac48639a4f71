package repository

import (
	"errors"

	"church-attendance/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByChatID(chatID int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	UpdateRole(id uint, role models.Role) error
	GetAll() ([]*models.User, error)
	GetByRoles(roles ...models.Role) ([]*models.User, error)
	GetStats() (int, map[models.Role]int, error)
}

type GormUserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate users table")
		return nil, err
	}

	return &GormUserRepository{db: db, logger: logger}, nil
}

func (r *GormUserRepository) Create(user *models.User) error {
	if user.ChatID != nil {
		existing, err := r.GetByChatID(*user.ChatID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.New("user with this chat already exists")
		}
	}
	if user.Email != nil {
		existing, err := r.GetByEmail(*user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.New("user with this email already exists")
		}
	}

	if result := r.db.Create(user); result.Error != nil {
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":   user.ID,
		"role": user.Role,
	}).Info("User created")

	return nil
}

func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.First(&user, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) GetByChatID(chatID int64) (*models.User, error) {
	var user models.User
	result := r.db.Where("chat_id = ?", chatID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) Update(user *models.User) error {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.Save(user).Error
}

func (r *GormUserRepository) Delete(id uint) error {
	result := r.db.Delete(&models.User{}, id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.WithField("id", id).Info("User deleted")
	return nil
}

func (r *GormUserRepository) UpdateRole(id uint, role models.Role) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"role": role,
	}).Info("User role updated")

	return nil
}

func (r *GormUserRepository) GetAll() ([]*models.User, error) {
	var users []*models.User
	result := r.db.Order("id").Find(&users)

	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (r *GormUserRepository) GetByRoles(roles ...models.Role) ([]*models.User, error) {
	var users []*models.User
	result := r.db.Where("role IN ?", roles).Order("id").Find(&users)

	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// GetStats returns the total number of users and a count per role.
func (r *GormUserRepository) GetStats() (int, map[models.Role]int, error) {
	var total int64
	if result := r.db.Model(&models.User{}).Count(&total); result.Error != nil {
		return 0, nil, result.Error
	}

	var rows []struct {
		Role  models.Role
		Count int
	}
	result := r.db.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows)
	if result.Error != nil {
		return 0, nil, result.Error
	}

	byRole := make(map[models.Role]int, len(rows))
	for _, row := range rows {
		byRole[row.Role] = row.Count
	}

	return int(total), byRole, nil
}
