package api

import (
	"church-attendance/internal/schedule"
)

type GatheringRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Description string            `json:"description" validate:"max=2000"`
	Schedule    schedule.Schedule `json:"schedule"`
	IsActive    *bool             `json:"isActive"`
}

type RosterRequest struct {
	IndividualIDs []uint `json:"individualIds" validate:"dive,gt=0"`
}

type AttendanceItem struct {
	IndividualID uint `json:"individualId" validate:"required"`
	Present      bool `json:"present"`
}

type VisitorItem struct {
	ID      string `json:"id" validate:"max=64"`
	Name    string `json:"name" validate:"required,max=200"`
	Present bool   `json:"present"`
}

type AttendanceRequest struct {
	Attendance []AttendanceItem `json:"attendanceList" validate:"dive"`
	Visitors   []VisitorItem    `json:"visitors" validate:"dive"`
	RecordedBy *uint            `json:"recordedBy"`
}

type FamilyMemberItem struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	MainContact string `json:"mainContact" validate:"omitempty,oneof=none primary secondary"`
}

type FamilyImportRequest struct {
	Name    string             `json:"name" validate:"required,max=200"`
	Members []FamilyMemberItem `json:"members" validate:"required,min=1,dive"`
}

type IndividualRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	FamilyID  *uint  `json:"familyId"`
	IsActive  *bool  `json:"isActive"`
}

type InvitationRequest struct {
	InviterID uint   `json:"inviterId" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=admin coordinator attendance_taker"`
}

type AcceptInvitationRequest struct {
	ChatID    int64  `json:"chatId"`
	Username  string `json:"username" validate:"max=64"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}
