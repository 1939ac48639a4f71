package repository

import (
	"errors"

	"church-attendance/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository interface {
	GetSession(gatheringID uint, date string) (*models.AttendanceSession, error)
	SaveSession(session *models.AttendanceSession) error
	ListSessionDates(gatheringID uint, limit int) ([]string, error)
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.AttendanceSession{}, &models.AttendanceRecord{}, &models.VisitorRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance tables")
		return nil, err
	}

	logger.Info("Attendance repository initialized")

	return &GormAttendanceRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAttendanceRepository) GetSession(gatheringID uint, date string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	result := r.db.Preload("Records").Preload("Visitors").
		Where("gathering_id = ? AND date = ?", gatheringID, date).
		First(&session)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithFields(logrus.Fields{
			"gathering_id": gatheringID,
			"date":         date,
		}).WithError(result.Error).Error("Failed to get attendance session")
		return nil, result.Error
	}

	return &session, nil
}

// SaveSession creates or replaces the session for (gathering, date). Existing
// records and visitors are swapped for the ones carried by session.
func (r *GormAttendanceRepository) SaveSession(session *models.AttendanceSession) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.AttendanceSession
		result := tx.Where("gathering_id = ? AND date = ?", session.GatheringID, session.Date).First(&existing)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			if err := tx.Omit(clause.Associations).Create(session).Error; err != nil {
				return err
			}
		case result.Error != nil:
			return result.Error
		default:
			session.ID = existing.ID
			session.CreatedAt = existing.CreatedAt
			if err := tx.Omit(clause.Associations).Save(session).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id = ?", session.ID).Delete(&models.AttendanceRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id = ?", session.ID).Delete(&models.VisitorRecord{}).Error; err != nil {
				return err
			}
		}

		for i := range session.Records {
			session.Records[i].ID = 0
			session.Records[i].SessionID = session.ID
		}
		for i := range session.Visitors {
			session.Visitors[i].ID = 0
			session.Visitors[i].SessionID = session.ID
		}

		if len(session.Records) > 0 {
			if err := tx.Create(&session.Records).Error; err != nil {
				return err
			}
		}
		if len(session.Visitors) > 0 {
			if err := tx.Create(&session.Visitors).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"gathering_id": session.GatheringID,
			"date":         session.Date,
		}).Error("Failed to save attendance session")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":           session.ID,
		"gathering_id": session.GatheringID,
		"date":         session.Date,
		"present":      session.PresentCount(),
		"visitors":     session.VisitorCount(),
	}).Info("Attendance session saved")

	return nil
}

// ListSessionDates returns up to limit recorded dates for the gathering, newest first.
func (r *GormAttendanceRepository) ListSessionDates(gatheringID uint, limit int) ([]string, error) {
	var dates []string
	query := r.db.Model(&models.AttendanceSession{}).
		Where("gathering_id = ?", gatheringID).
		Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Pluck("date", &dates).Error; err != nil {
		return nil, err
	}

	return dates, nil
}
