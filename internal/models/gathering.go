package models

import (
	"strings"
	"time"

	"church-attendance/internal/schedule"

	"gorm.io/datatypes"
)

type Gathering struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string `json:"description"`

	// regular: day of week + frequency; custom: one_off or recurring
	Kind         string `gorm:"type:varchar(20);not null" json:"kind"`
	DayOfWeek    string `gorm:"type:varchar(12)" json:"dayOfWeek,omitempty"`
	Frequency    string `gorm:"type:varchar(12)" json:"frequency,omitempty"`
	ScheduleType string `gorm:"type:varchar(12)" json:"scheduleType,omitempty"`
	StartDate    string `gorm:"type:varchar(10)" json:"startDate,omitempty"`
	EndDate      string `gorm:"type:varchar(10)" json:"endDate,omitempty"`

	PatternFrequency  string                       `gorm:"type:varchar(12)" json:"patternFrequency,omitempty"`
	PatternInterval   int                          `gorm:"not null;default:1" json:"patternInterval,omitempty"`
	PatternDaysOfWeek datatypes.JSONType[[]string] `json:"patternDaysOfWeek"`
	PatternDayOfMonth int                          `json:"patternDayOfMonth,omitempty"`

	IsActive  bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Members []Individual `gorm:"many2many:gathering_members;" json:"members,omitempty"`
}

func (Gathering) TableName() string {
	return "gatherings"
}

// Schedule assembles the schedule definition from the row columns.
func (g *Gathering) Schedule() schedule.Schedule {
	s := schedule.Schedule{
		Kind:         schedule.Kind(g.Kind),
		DayOfWeek:    g.DayOfWeek,
		Frequency:    schedule.Frequency(g.Frequency),
		ScheduleType: schedule.ScheduleType(g.ScheduleType),
		StartDate:    g.StartDate,
		EndDate:      g.EndDate,
	}
	if g.PatternFrequency != "" {
		s.Pattern = &schedule.Pattern{
			Frequency:  schedule.Frequency(g.PatternFrequency),
			Interval:   g.PatternInterval,
			DaysOfWeek: g.PatternDaysOfWeek.Data(),
			DayOfMonth: g.PatternDayOfMonth,
		}
	}
	return s
}

// SetSchedule spreads s over the row columns.
func (g *Gathering) SetSchedule(s schedule.Schedule) {
	g.Kind = string(s.Kind)
	g.DayOfWeek = s.DayOfWeek
	g.Frequency = string(s.Frequency)
	g.ScheduleType = string(s.ScheduleType)
	g.StartDate = s.StartDate
	g.EndDate = s.EndDate

	g.PatternFrequency = ""
	g.PatternInterval = 1
	g.PatternDaysOfWeek = datatypes.NewJSONType([]string{})
	g.PatternDayOfMonth = 0
	if s.Pattern != nil {
		g.PatternFrequency = string(s.Pattern.Frequency)
		if s.Pattern.Interval > 0 {
			g.PatternInterval = s.Pattern.Interval
		}
		days := s.Pattern.DaysOfWeek
		if days == nil {
			days = []string{}
		}
		g.PatternDaysOfWeek = datatypes.NewJSONType(days)
		g.PatternDayOfMonth = s.Pattern.DayOfMonth
	}
}

// HasMember reports whether the individual is on the roster.
func (g *Gathering) HasMember(individualID uint) bool {
	for _, m := range g.Members {
		if m.ID == individualID {
			return true
		}
	}
	return false
}

// IsValid checks the required fields.
func (g *Gathering) IsValid() bool {
	if strings.TrimSpace(g.Name) == "" {
		return false
	}
	return g.Schedule().Validate() == nil
}
