package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"church-attendance/internal/models"
	"church-attendance/internal/report"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const sessionLoadConcurrency = 8

type ReportService struct {
	gatherings *GatheringService
	attendance *AttendanceService
	logger     *logrus.Logger
}

func NewReportService(gatherings *GatheringService, attendance *AttendanceService) *ReportService {
	return &ReportService{
		gatherings: gatherings,
		attendance: attendance,
		logger:     newLogger(),
	}
}

// Summary loads the recent sessions of the given gatherings, or of every
// active gathering when ids is empty, and summarizes them at now.
func (s *ReportService) Summary(ctx context.Context, ids []uint, now time.Time) (report.Summary, error) {
	gatherings, err := s.resolve(ids)
	if err != nil {
		return report.Summary{}, err
	}

	type key struct {
		gathering *models.Gathering
		date      string
	}
	var keys []key
	for _, g := range gatherings {
		dates, err := s.attendance.SessionDates(g.ID, report.MaxSessionDates)
		if err != nil {
			return report.Summary{}, fmt.Errorf("failed to list sessions of gathering %d: %w", g.ID, err)
		}
		for _, d := range dates {
			keys = append(keys, key{gathering: g, date: d})
		}
	}

	sessions := make([]report.Session, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sessionLoadConcurrency)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stored, err := s.attendance.repo.GetSession(k.gathering.ID, k.date)
			if err != nil {
				return fmt.Errorf("failed to load session %d/%s: %w", k.gathering.ID, k.date, err)
			}
			if stored == nil {
				return nil
			}
			sessions[i] = *buildSession(k.gathering, stored, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Failed to load sessions for summary")
		return report.Summary{}, err
	}

	loaded := sessions[:0]
	for _, sess := range sessions {
		if sess.Date != "" {
			loaded = append(loaded, sess)
		}
	}

	summary := report.Summarize(loaded, now)

	s.logger.WithFields(logrus.Fields{
		"gatherings": len(gatherings),
		"sessions":   len(loaded),
		"absences":   len(summary.GroupedAbsences),
		"visitors":   len(summary.VisitorFrequencies),
	}).Debug("Summary computed")

	return summary, nil
}

func (s *ReportService) resolve(ids []uint) ([]*models.Gathering, error) {
	if len(ids) == 0 {
		active, err := s.gatherings.List(true)
		if err != nil {
			return nil, err
		}
		out := make([]*models.Gathering, 0, len(active))
		for _, g := range active {
			full, err := s.gatherings.Get(g.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, full)
		}
		return out, nil
	}

	seen := make(map[uint]bool, len(ids))
	out := make([]*models.Gathering, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		g, err := s.gatherings.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// FormatAbsences renders grouped absences for chat output.
func (s *ReportService) FormatAbsences(summary report.Summary) string {
	if len(summary.GroupedAbsences) == 0 {
		return "✅ Nobody has missed two sessions in a row."
	}

	var sb strings.Builder
	sb.WriteString("🔔 Consecutive absences:\n\n")
	for _, a := range summary.GroupedAbsences {
		icon := "👤"
		if a.IsFamily() {
			icon = "👨‍👩‍👧"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %d in a row\n", icon, a.Name, a.Streak))
	}
	return sb.String()
}

// FormatVisitors renders repeat visitors for chat output.
func (s *ReportService) FormatVisitors(summary report.Summary) string {
	if len(summary.VisitorFrequencies) == 0 {
		return fmt.Sprintf("📭 No repeat visitors in the last %d days.", report.VisitorWindowDays)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🙋 Repeat visitors (last %d days):\n\n", report.VisitorWindowDays))
	for _, v := range summary.VisitorFrequencies {
		sb.WriteString(fmt.Sprintf("• %s: %d visits\n", v.Name, v.Count))
	}
	return sb.String()
}

func (s *ReportService) FormatSummary(summary report.Summary) string {
	return s.FormatAbsences(summary) + "\n" + s.FormatVisitors(summary)
}
