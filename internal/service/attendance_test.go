package service

import (
	"context"
	"testing"

	"church-attendance/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceService_RecordValidates(t *testing.T) {
	env := newTestEnv(t)
	g, family, _ := seedCongregation(t, env)

	_, err := env.attendanceService.Record(g.ID, "14/01/2024", nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.attendanceService.Record(9999, "2024-01-14", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.attendanceService.Record(g.ID, "2024-01-14", []AttendanceInput{{IndividualID: 9999, Present: true}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	dup := []AttendanceInput{
		{IndividualID: family.Members[0].ID, Present: true},
		{IndividualID: family.Members[0].ID, Present: false},
	}
	_, err = env.attendanceService.Record(g.ID, "2024-01-14", dup, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.attendanceService.Record(g.ID, "2024-01-14", nil, []VisitorInput{{Name: " "}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAttendanceService_SessionIncludesWholeRoster(t *testing.T) {
	env := newTestEnv(t)
	g, family, carol := seedCongregation(t, env)

	_, err := env.attendanceService.Record(g.ID, "2024-01-14",
		[]AttendanceInput{{IndividualID: carol.ID, Present: true}},
		[]VisitorInput{{Key: "v-1", Name: "Dana", Present: true}},
		nil,
	)
	require.NoError(t, err)

	session, err := env.attendanceService.Session(g.ID, "2024-01-14")
	require.NoError(t, err)
	require.Len(t, session.Attendance, 3)

	byID := make(map[uint]report.AttendanceEntry)
	for _, e := range session.Attendance {
		byID[e.IndividualID] = e
	}
	assert.True(t, byID[carol.ID].Present)
	assert.False(t, byID[family.Members[0].ID].Present)
	assert.Equal(t, family.ID, byID[family.Members[0].ID].FamilyID)
	assert.Equal(t, "SMITH, Alice and Bob", byID[family.Members[0].ID].FamilyName)
	assert.Zero(t, byID[carol.ID].FamilyID)

	require.Len(t, session.Visitors, 1)
	assert.Equal(t, "v-1", session.Visitors[0].ID)

	_, err = env.attendanceService.Session(g.ID, "2024-01-21")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportService_Summary(t *testing.T) {
	env := newTestEnv(t)
	g, family, carol := seedCongregation(t, env)
	alice, bob := family.Members[0], family.Members[1]

	record := func(day string, smithsPresent bool, visitors ...string) {
		t.Helper()
		var vs []VisitorInput
		for _, name := range visitors {
			vs = append(vs, VisitorInput{Name: name, Present: true})
		}
		_, err := env.attendanceService.Record(g.ID, day, []AttendanceInput{
			{IndividualID: alice.ID, Present: smithsPresent},
			{IndividualID: bob.ID, Present: smithsPresent},
			{IndividualID: carol.ID, Present: true},
		}, vs, nil)
		require.NoError(t, err)
	}

	record("2024-01-07", true)
	record("2024-01-14", false, "Dana")
	record("2024-01-21", false, "Dana", "Eli")

	summary, err := env.reportService.Summary(context.Background(), []uint{g.ID}, date("2024-01-22"))
	require.NoError(t, err)

	require.Len(t, summary.GroupedAbsences, 1)
	got := summary.GroupedAbsences[0]
	assert.True(t, got.IsFamily())
	assert.Equal(t, "Smith family", got.Name)
	assert.Equal(t, 2, got.Streak)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, got.MemberIDs)

	require.Len(t, summary.VisitorFrequencies, 1)
	assert.Equal(t, "Dana", summary.VisitorFrequencies[0].Name)
	assert.Equal(t, 2, summary.VisitorFrequencies[0].Count)

	all, err := env.reportService.Summary(context.Background(), nil, date("2024-01-22"))
	require.NoError(t, err)
	assert.Equal(t, summary, all)

	_, err = env.reportService.Summary(context.Background(), []uint{g.ID, 9999}, date("2024-01-22"))
	assert.ErrorIs(t, err, ErrNotFound)

	text := env.reportService.FormatSummary(summary)
	assert.Contains(t, text, "Smith family: 2 in a row")
	assert.Contains(t, text, "Dana: 2 visits")
}

func TestReportService_LateRosterMemberHasNoHistory(t *testing.T) {
	env := newTestEnv(t)
	g, family, carol := seedCongregation(t, env)
	alice, bob := family.Members[0], family.Members[1]

	for _, day := range []string{"2024-01-07", "2024-01-14", "2024-01-21"} {
		_, err := env.attendanceService.Record(g.ID, day, []AttendanceInput{
			{IndividualID: alice.ID, Present: false},
			{IndividualID: bob.ID, Present: false},
			{IndividualID: carol.ID, Present: true},
		}, nil, nil)
		require.NoError(t, err)
	}

	dave, err := env.peopleService.CreateIndividual(IndividualInput{FirstName: "Dave", LastName: "Smith", FamilyID: &family.ID})
	require.NoError(t, err)
	_, err = env.gatheringService.SetRoster(g.ID, []uint{alice.ID, bob.ID, carol.ID, dave.ID})
	require.NoError(t, err)

	summary, err := env.reportService.Summary(context.Background(), []uint{g.ID}, date("2024-01-22"))
	require.NoError(t, err)

	require.Len(t, summary.GroupedAbsences, 1)
	got := summary.GroupedAbsences[0]
	assert.True(t, got.IsFamily())
	assert.Equal(t, 3, got.Streak)
	assert.ElementsMatch(t, []uint{alice.ID, bob.ID}, got.MemberIDs)

	// the check-in view still lists the whole current roster
	session, err := env.attendanceService.Session(g.ID, "2024-01-21")
	require.NoError(t, err)
	assert.Len(t, session.Attendance, 4)
}

func TestReportService_EmptySummary(t *testing.T) {
	env := newTestEnv(t)
	g, _, _ := seedCongregation(t, env)

	summary, err := env.reportService.Summary(context.Background(), []uint{g.ID}, date("2024-01-22"))
	require.NoError(t, err)
	assert.NotNil(t, summary.GroupedAbsences)
	assert.Empty(t, summary.GroupedAbsences)
	assert.Empty(t, summary.VisitorFrequencies)

	assert.Contains(t, env.reportService.FormatAbsences(summary), "Nobody has missed")
	assert.Contains(t, env.reportService.FormatVisitors(summary), "No repeat visitors")
}
