package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleCoordinator     Role = "coordinator"
	RoleAttendanceTaker Role = "attendance_taker"
)

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCoordinator:
		return RoleCoordinator, true
	case RoleAttendanceTaker:
		return RoleAttendanceTaker, true
	}
	return "", false
}

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	ChatID    *int64    `gorm:"uniqueIndex" json:"chatId,omitempty"`
	Email     *string   `gorm:"uniqueIndex;size:200" json:"email,omitempty"`
	Username  string    `json:"username"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'attendance_taker'" json:"role"`
}

// IsAdmin checks whether the user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManage: admins and coordinators see reports and manage gatherings
func (u *User) CanManage() bool {
	return u.Role == RoleAdmin || u.Role == RoleCoordinator
}

// SetRole sets the role
func (u *User) SetRole(role Role) {
	u.Role = role
}

// HasChat reports whether a Telegram chat is linked
func (u *User) HasChat() bool {
	return u.ChatID != nil && *u.ChatID != 0
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		return "@" + u.Username
	}
	return name
}

// TableName sets the table name
func (User) TableName() string {
	return "users"
}
