package models

import "time"

type AttendanceSession struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	GatheringID uint      `gorm:"not null;uniqueIndex:idx_session_gathering_date" json:"gatheringId"`
	Date        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_session_gathering_date;index" json:"date"`
	Notes       string    `json:"notes"`
	RecordedBy  *uint     `json:"recordedBy,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Records  []AttendanceRecord `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"records"`
	Visitors []VisitorRecord    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"visitors"`
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

type AttendanceRecord struct {
	ID           uint `gorm:"primarykey" json:"id"`
	SessionID    uint `gorm:"not null;uniqueIndex:idx_record_session_individual" json:"sessionId"`
	IndividualID uint `gorm:"not null;uniqueIndex:idx_record_session_individual;index" json:"individualId"`
	Present      bool `gorm:"not null" json:"present"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

type VisitorRecord struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	SessionID  uint   `gorm:"not null;index" json:"sessionId"`
	VisitorKey string `gorm:"size:64" json:"visitorKey,omitempty"` // external visitor id, when known
	Name       string `gorm:"size:200;not null" json:"name"`
	Present    bool   `gorm:"not null" json:"present"`
}

func (VisitorRecord) TableName() string {
	return "visitor_records"
}

func (s *AttendanceSession) PresentCount() int {
	n := 0
	for _, r := range s.Records {
		if r.Present {
			n++
		}
	}
	return n
}

func (s *AttendanceSession) VisitorCount() int {
	n := 0
	for _, v := range s.Visitors {
		if v.Present {
			n++
		}
	}
	return n
}
