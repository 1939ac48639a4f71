package service

import (
	"strings"
	"testing"

	"church-attendance/internal/schedule"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatheringService_CreateValidatesSchedule(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		input   GatheringInput
		wantErr []error
	}{
		{
			name:    "missing name",
			input:   GatheringInput{Schedule: weeklySunday()},
			wantErr: []error{ErrInvalidInput},
		},
		{
			name: "recurring without pattern",
			input: GatheringInput{Name: "Retreat", Schedule: schedule.Schedule{
				Kind: schedule.KindCustom, ScheduleType: schedule.ScheduleTypeRecurring, StartDate: "2024-01-01",
			}},
			wantErr: []error{ErrInvalidInput, schedule.ErrMissingPattern},
		},
		{
			name: "custom without start date",
			input: GatheringInput{Name: "Picnic", Schedule: schedule.Schedule{
				Kind: schedule.KindCustom, ScheduleType: schedule.ScheduleTypeOneOff,
			}},
			wantErr: []error{ErrInvalidInput, schedule.ErrMissingStartDate},
		},
		{
			name: "unknown day",
			input: GatheringInput{Name: "Choir", Schedule: schedule.Schedule{
				Kind: schedule.KindRegular, DayOfWeek: "Caturday", Frequency: schedule.FrequencyWeekly,
			}},
			wantErr: []error{ErrInvalidInput, schedule.ErrInvalidSchedule},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.gatheringService.Create(tt.input)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestGatheringService_DuplicateNameConflicts(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.gatheringService.Create(GatheringInput{Name: "Sunday Service", Schedule: weeklySunday()})
	require.NoError(t, err)

	_, err = env.gatheringService.Create(GatheringInput{Name: "  Sunday Service ", Schedule: weeklySunday()})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGatheringService_Occurrences(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.gatheringService.Create(GatheringInput{Name: "Sunday Service", Schedule: weeklySunday()})
	require.NoError(t, err)

	occurrences, err := env.gatheringService.Occurrences(g.ID, date("2024-01-10"), 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 13)
	assert.Equal(t, "2024-01-14", occurrences[0].Date)
	assert.Equal(t, "2024-04-07", occurrences[12].Date)

	short, err := env.gatheringService.Occurrences(g.ID, date("2024-01-10"), 1)
	require.NoError(t, err)
	assert.Len(t, short, 4)

	_, err = env.gatheringService.Occurrences(9999, date("2024-01-10"), 0)
	assert.ErrorIs(t, err, ErrNotFound)

	longest, err := env.gatheringService.Occurrences(g.ID, date("2024-01-10"), schedule.MaxHorizonMonths)
	require.NoError(t, err)
	assert.Len(t, longest, 104)

	_, err = env.gatheringService.Occurrences(g.ID, date("2024-01-10"), 5000)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.calendarService.Feed(g.ID, date("2024-01-10"), 5000)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGatheringService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.gatheringService.Create(GatheringInput{Name: "Youth", Schedule: weeklySunday()})
	require.NoError(t, err)

	inactive := false
	updated, err := env.gatheringService.Update(g.ID, GatheringInput{
		Name: "Youth Night",
		Schedule: schedule.Schedule{
			Kind: schedule.KindRegular, DayOfWeek: "Friday", Frequency: schedule.FrequencyBiweekly,
		},
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Youth Night", updated.Name)
	assert.False(t, updated.IsActive)

	got, err := env.gatheringService.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.FrequencyBiweekly, got.Schedule().Frequency)

	active, err := env.gatheringService.List(true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, env.gatheringService.Delete(g.ID))
	assert.ErrorIs(t, env.gatheringService.Delete(g.ID), ErrNotFound)
}

func TestCalendarService_Feed(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.gatheringService.Create(GatheringInput{
		Name:        "Sunday Service",
		Description: "Main worship",
		Schedule:    weeklySunday(),
	})
	require.NoError(t, err)

	feed, err := env.calendarService.Feed(g.ID, date("2024-01-10"), 1)
	require.NoError(t, err)
	assert.Contains(t, feed, "X-WR-CALNAME:Sunday Service")

	cal, err := ics.ParseCalendar(strings.NewReader(feed))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "2024-01-14-1@church-attendance", events[0].Id())

	start, err := events[0].GetAllDayStartAt()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", start.Format(schedule.DateLayout))
}

func TestGatheringService_FormatOccurrences(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.gatheringService.Create(GatheringInput{Name: "Sunday Service", Schedule: weeklySunday()})
	require.NoError(t, err)

	text := env.gatheringService.FormatOccurrences(g, []schedule.Occurrence{{Date: "2024-01-14", CanDelete: true}})
	assert.Contains(t, text, "Sunday Service")
	assert.Contains(t, text, "2024-01-14 (Sunday)")

	assert.Contains(t, env.gatheringService.FormatOccurrences(g, nil), "No upcoming dates.")
}
