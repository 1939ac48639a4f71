package models

import "time"

type Invitation struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Token          string     `gorm:"size:36;not null;uniqueIndex" json:"token"`
	Email          string     `gorm:"size:200;not null;index" json:"email"`
	Role           Role       `gorm:"type:varchar(20);not null" json:"role"`
	InvitedByID    uint       `gorm:"not null" json:"invitedById"`
	ExpiresAt      time.Time  `gorm:"not null" json:"expiresAt"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	AcceptedUserID *uint      `json:"acceptedUserId,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// IsExpired reports whether the invitation has lapsed at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
