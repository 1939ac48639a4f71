package repository

import (
	"errors"
	"fmt"

	"church-attendance/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type GatheringRepository interface {
	Create(gathering *models.Gathering) error
	GetByID(id uint) (*models.Gathering, error)
	GetByName(name string) (*models.Gathering, error)
	List(activeOnly bool) ([]*models.Gathering, error)
	Update(gathering *models.Gathering) error
	Delete(id uint) error
	SetRoster(id uint, individualIDs []uint) error
}

type GormGatheringRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormGatheringRepository(db *gorm.DB) (*GormGatheringRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Gathering{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate gatherings table")
		return nil, err
	}

	logger.Info("Gathering repository initialized")

	return &GormGatheringRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormGatheringRepository) Create(gathering *models.Gathering) error {
	if !gathering.IsValid() {
		r.logger.WithField("name", gathering.Name).Warn("Invalid gathering data")
		return errors.New("invalid gathering data")
	}

	if err := r.db.Omit("Members").Create(gathering).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create gathering")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":   gathering.ID,
		"name": gathering.Name,
		"kind": gathering.Kind,
	}).Info("Gathering created")

	return nil
}

func (r *GormGatheringRepository) GetByID(id uint) (*models.Gathering, error) {
	var gathering models.Gathering
	result := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("last_name, first_name")
	}).Preload("Members.Family").First(&gathering, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Gathering not found")
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &gathering, nil
}

func (r *GormGatheringRepository) GetByName(name string) (*models.Gathering, error) {
	var gathering models.Gathering
	result := r.db.Where("name = ?", name).First(&gathering)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &gathering, nil
}

func (r *GormGatheringRepository) List(activeOnly bool) ([]*models.Gathering, error) {
	var gatherings []*models.Gathering
	query := r.db.Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&gatherings).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list gatherings")
		return nil, err
	}

	return gatherings, nil
}

func (r *GormGatheringRepository) Update(gathering *models.Gathering) error {
	if !gathering.IsValid() {
		r.logger.WithField("id", gathering.ID).Warn("Invalid gathering data for update")
		return errors.New("invalid gathering data")
	}

	var count int64
	if err := r.db.Model(&models.Gathering{}).Where("id = ?", gathering.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		r.logger.WithField("id", gathering.ID).Warn("Gathering not found for update")
		return ErrNotFound
	}

	if err := r.db.Omit("Members").Save(gathering).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update gathering")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":   gathering.ID,
		"name": gathering.Name,
	}).Info("Gathering updated")

	return nil
}

// Delete removes the gathering with its roster links and recorded sessions.
func (r *GormGatheringRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		gathering := models.Gathering{ID: id}
		if err := tx.Model(&gathering).Association("Members").Clear(); err != nil {
			return err
		}

		sessionIDs := tx.Model(&models.AttendanceSession{}).Select("id").Where("gathering_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.VisitorRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gathering_id = ?", id).Delete(&models.AttendanceSession{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Gathering{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("id", id).Warn("Failed to delete gathering")
		return err
	}

	r.logger.WithField("id", id).Info("Gathering deleted")
	return nil
}

// SetRoster replaces the roster. Every id must refer to an existing individual.
func (r *GormGatheringRepository) SetRoster(id uint, individualIDs []uint) error {
	gathering := models.Gathering{ID: id}

	var count int64
	if err := r.db.Model(&models.Gathering{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	members := make([]models.Individual, 0, len(individualIDs))
	if len(individualIDs) > 0 {
		if err := r.db.Where("id IN ?", individualIDs).Find(&members).Error; err != nil {
			return err
		}
	}
	if len(members) != countUnique(individualIDs) {
		return fmt.Errorf("%w: roster references unknown individuals", ErrNotFound)
	}

	association := r.db.Model(&gathering).Association("Members")
	var err error
	if len(members) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(members)
	}
	if err != nil {
		r.logger.WithError(err).WithField("id", id).Error("Failed to replace roster")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      id,
		"members": len(members),
	}).Info("Gathering roster updated")

	return nil
}

func countUnique(ids []uint) int {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
