package service

import (
	"testing"

	"church-attendance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainContact_NextCycles(t *testing.T) {
	c := MainContactNone
	c = c.Next()
	assert.Equal(t, MainContactPrimary, c)
	c = c.Next()
	assert.Equal(t, MainContactSecondary, c)
	c = c.Next()
	assert.Equal(t, MainContactNone, c)
}

func TestParseMainContact(t *testing.T) {
	tests := []struct {
		in   string
		want MainContact
		ok   bool
	}{
		{"", MainContactNone, true},
		{"none", MainContactNone, true},
		{"Primary", MainContactPrimary, true},
		{" secondary ", MainContactSecondary, true},
		{"tertiary", MainContactNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseMainContact(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestPeopleService_ImportFamily(t *testing.T) {
	env := newTestEnv(t)

	family, err := env.peopleService.ImportFamily(ImportFamilyRequest{
		Name: "SMITH, Alice and Bob",
		Members: []FamilyMemberInput{
			{FirstName: "Alice", LastName: "Smith", MainContact: MainContactPrimary},
			{FirstName: "Bob", LastName: "Smith"},
		},
	})
	require.NoError(t, err)
	require.Len(t, family.Members, 2)
	assert.Equal(t, models.ContactRolePrimary, family.Members[0].ContactRole)
	assert.Equal(t, models.ContactRoleNone, family.Members[1].ContactRole)

	_, err = env.peopleService.ImportFamily(ImportFamilyRequest{
		Name:    "SMITH, Alice and Bob",
		Members: []FamilyMemberInput{{FirstName: "Eve"}},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPeopleService_ImportFamilyRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  ImportFamilyRequest
	}{
		{"no name", ImportFamilyRequest{Members: []FamilyMemberInput{{FirstName: "A"}}}},
		{"no members", ImportFamilyRequest{Name: "EMPTY"}},
		{"blank member", ImportFamilyRequest{Name: "BLANK", Members: []FamilyMemberInput{{FirstName: " "}}}},
		{"two primaries", ImportFamilyRequest{Name: "DOE", Members: []FamilyMemberInput{
			{FirstName: "John", MainContact: MainContactPrimary},
			{FirstName: "Jane", MainContact: MainContactPrimary},
		}}},
		{"two secondaries", ImportFamilyRequest{Name: "ROE", Members: []FamilyMemberInput{
			{FirstName: "Rick", MainContact: MainContactSecondary},
			{FirstName: "Ruth", MainContact: MainContactSecondary},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.peopleService.ImportFamily(tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	families, err := env.peopleService.ListFamilies()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestPeopleService_ToggleMainContact(t *testing.T) {
	env := newTestEnv(t)

	family, err := env.peopleService.ImportFamily(ImportFamilyRequest{
		Name: "SMITH, Alice and Bob",
		Members: []FamilyMemberInput{
			{FirstName: "Alice", LastName: "Smith", MainContact: MainContactPrimary},
			{FirstName: "Bob", LastName: "Smith"},
		},
	})
	require.NoError(t, err)
	bob := family.Members[1]

	// none -> primary is taken by Alice
	_, err = env.peopleService.ToggleMainContact(bob.ID)
	assert.ErrorIs(t, err, ErrConflict)

	alice, err := env.peopleService.ToggleMainContact(family.Members[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactRoleSecondary, alice.ContactRole)

	updated, err := env.peopleService.ToggleMainContact(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactRolePrimary, updated.ContactRole)

	loner, err := env.peopleService.CreateIndividual(IndividualInput{FirstName: "Carol"})
	require.NoError(t, err)
	_, err = env.peopleService.ToggleMainContact(loner.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPeopleService_FindByName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.peopleService.CreateIndividual(IndividualInput{FirstName: "Carol", LastName: "Jones"})
	require.NoError(t, err)

	got, err := env.peopleService.FindByName("Carol Jones")
	require.NoError(t, err)
	assert.Equal(t, "Carol Jones", got.FullName())

	_, err = env.peopleService.FindByName("Nobody Here")
	assert.ErrorIs(t, err, ErrNotFound)

	missingFamily := uint(404)
	_, err = env.peopleService.CreateIndividual(IndividualInput{FirstName: "Dan", FamilyID: &missingFamily})
	assert.ErrorIs(t, err, ErrNotFound)
}
