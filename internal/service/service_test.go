package service

import (
	"strings"
	"testing"
	"time"

	"church-attendance/internal/config"
	"church-attendance/internal/database"
	"church-attendance/internal/models"
	"church-attendance/internal/repository"
	"church-attendance/internal/schedule"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users       *repository.GormUserRepository
	invitations *repository.GormInvitationRepository

	userService       *UserService
	peopleService     *PeopleService
	gatheringService  *GatheringService
	attendanceService *AttendanceService
	reportService     *ReportService
	calendarService   *CalendarService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(config.DriverSQLite, "file:svc_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	users, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	people, err := repository.NewGormPeopleRepository(db)
	require.NoError(t, err)
	gatherings, err := repository.NewGormGatheringRepository(db)
	require.NoError(t, err)
	attendance, err := repository.NewGormAttendanceRepository(db)
	require.NoError(t, err)
	invitations, err := repository.NewGormInvitationRepository(db)
	require.NoError(t, err)

	env := &testEnv{users: users, invitations: invitations}
	env.userService = NewUserService(users)
	env.peopleService = NewPeopleService(people)
	env.gatheringService = NewGatheringService(gatherings, time.UTC, 3)
	env.attendanceService = NewAttendanceService(env.gatheringService, attendance)
	env.reportService = NewReportService(env.gatheringService, env.attendanceService)
	env.calendarService = NewCalendarService(env.gatheringService)
	return env
}

func date(s string) time.Time {
	d, err := time.ParseInLocation(schedule.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func weeklySunday() schedule.Schedule {
	return schedule.Schedule{Kind: schedule.KindRegular, DayOfWeek: "Sunday", Frequency: schedule.FrequencyWeekly}
}

// seedCongregation creates the Smith family, Carol Jones and a Sunday
// gathering with all three on the roster.
func seedCongregation(t *testing.T, env *testEnv) (*models.Gathering, *models.Family, *models.Individual) {
	t.Helper()

	family, err := env.peopleService.ImportFamily(ImportFamilyRequest{
		Name: "SMITH, Alice and Bob",
		Members: []FamilyMemberInput{
			{FirstName: "Alice", LastName: "Smith", MainContact: MainContactPrimary},
			{FirstName: "Bob", LastName: "Smith", MainContact: MainContactSecondary},
		},
	})
	require.NoError(t, err)

	carol, err := env.peopleService.CreateIndividual(IndividualInput{FirstName: "Carol", LastName: "Jones"})
	require.NoError(t, err)

	gathering, err := env.gatheringService.Create(GatheringInput{Name: "Sunday Service", Schedule: weeklySunday()})
	require.NoError(t, err)

	gathering, err = env.gatheringService.SetRoster(gathering.ID, []uint{family.Members[0].ID, family.Members[1].ID, carol.ID})
	require.NoError(t, err)

	return gathering, family, carol
}

func createUser(t *testing.T, env *testEnv, chatID int64, role models.Role) *models.User {
	t.Helper()
	u := &models.User{FirstName: "User", Role: role}
	if chatID != 0 {
		u.ChatID = &chatID
	}
	require.NoError(t, env.users.Create(u))
	return u
}
