package models

import (
	"strings"
	"time"
)

// Family contact roles
const (
	ContactRoleNone      = "none"
	ContactRolePrimary   = "primary"
	ContactRoleSecondary = "secondary"
)

type Family struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:200;not null;index" json:"name"` // "SMITH, John and Jane"
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Members []Individual `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}

func (Family) TableName() string {
	return "families"
}

type Individual struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	FirstName   string    `gorm:"size:100;not null" json:"firstName"`
	LastName    string    `gorm:"size:100" json:"lastName"`
	FamilyID    *uint     `gorm:"index" json:"familyId,omitempty"`
	ContactRole string    `gorm:"type:varchar(12);not null;default:'none'" json:"contactRole"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Family *Family `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}

func (Individual) TableName() string {
	return "individuals"
}

// FullName returns "First Last".
func (i *Individual) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// FamilyKey returns the family id, or 0 without a family.
func (i *Individual) FamilyKey() uint {
	if i.FamilyID == nil {
		return 0
	}
	return *i.FamilyID
}

// IsValid checks the required fields.
func (i *Individual) IsValid() bool {
	if strings.TrimSpace(i.FirstName) == "" {
		return false
	}
	switch i.ContactRole {
	case "", ContactRoleNone, ContactRolePrimary, ContactRoleSecondary:
		return true
	}
	return false
}
