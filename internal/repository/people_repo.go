package repository

import (
	"errors"

	"church-attendance/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PeopleRepository interface {
	CreateFamily(family *models.Family) error
	GetFamily(id uint) (*models.Family, error)
	GetFamilyByName(name string) (*models.Family, error)
	ListFamilies() ([]*models.Family, error)
	CreateIndividual(individual *models.Individual) error
	GetIndividual(id uint) (*models.Individual, error)
	GetIndividuals(ids []uint) ([]*models.Individual, error)
	FindIndividualByName(firstName, lastName string) (*models.Individual, error)
	ListIndividuals(activeOnly bool) ([]*models.Individual, error)
	UpdateIndividual(individual *models.Individual) error
}

type GormPeopleRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormPeopleRepository(db *gorm.DB) (*GormPeopleRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Family{}, &models.Individual{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate families/individuals tables")
		return nil, err
	}

	logger.Info("People repository initialized")

	return &GormPeopleRepository{
		db:     db,
		logger: logger,
	}, nil
}

// CreateFamily inserts the family together with its Members in one transaction.
func (r *GormPeopleRepository) CreateFamily(family *models.Family) error {
	for i := range family.Members {
		if !family.Members[i].IsValid() {
			r.logger.WithField("family", family.Name).Warn("Invalid family member data")
			return errors.New("invalid family member data")
		}
	}

	if err := r.db.Create(family).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create family")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      family.ID,
		"name":    family.Name,
		"members": len(family.Members),
	}).Info("Family created")

	return nil
}

func (r *GormPeopleRepository) GetFamily(id uint) (*models.Family, error) {
	var family models.Family
	result := r.db.Preload("Members").First(&family, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &family, nil
}

func (r *GormPeopleRepository) GetFamilyByName(name string) (*models.Family, error) {
	var family models.Family
	result := r.db.Preload("Members").Where("name = ?", name).First(&family)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &family, nil
}

func (r *GormPeopleRepository) ListFamilies() ([]*models.Family, error) {
	var families []*models.Family
	if err := r.db.Preload("Members").Order("name").Find(&families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

func (r *GormPeopleRepository) CreateIndividual(individual *models.Individual) error {
	if !individual.IsValid() {
		return errors.New("invalid individual data")
	}
	if individual.ContactRole == "" {
		individual.ContactRole = models.ContactRoleNone
	}

	if err := r.db.Omit("Family").Create(individual).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create individual")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":        individual.ID,
		"family_id": individual.FamilyKey(),
	}).Info("Individual created")

	return nil
}

func (r *GormPeopleRepository) GetIndividual(id uint) (*models.Individual, error) {
	var individual models.Individual
	result := r.db.Preload("Family").First(&individual, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &individual, nil
}

func (r *GormPeopleRepository) GetIndividuals(ids []uint) ([]*models.Individual, error) {
	var individuals []*models.Individual
	if len(ids) == 0 {
		return individuals, nil
	}
	if err := r.db.Preload("Family").Where("id IN ?", ids).Find(&individuals).Error; err != nil {
		return nil, err
	}
	return individuals, nil
}

func (r *GormPeopleRepository) FindIndividualByName(firstName, lastName string) (*models.Individual, error) {
	var individual models.Individual
	result := r.db.Where("first_name = ? AND last_name = ?", firstName, lastName).First(&individual)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &individual, nil
}

func (r *GormPeopleRepository) ListIndividuals(activeOnly bool) ([]*models.Individual, error) {
	var individuals []*models.Individual
	query := r.db.Preload("Family").Order("last_name, first_name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&individuals).Error; err != nil {
		return nil, err
	}
	return individuals, nil
}

func (r *GormPeopleRepository) UpdateIndividual(individual *models.Individual) error {
	if !individual.IsValid() {
		return errors.New("invalid individual data")
	}

	result := r.db.Model(&models.Individual{}).
		Where("id = ?", individual.ID).
		Updates(map[string]interface{}{
			"first_name":   individual.FirstName,
			"last_name":    individual.LastName,
			"family_id":    individual.FamilyID,
			"contact_role": individual.ContactRole,
			"is_active":    individual.IsActive,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update individual")
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
