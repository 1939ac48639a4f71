package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FamilyLabel turns a stored family name such as "SMITH, John and Jane" into
// "Smith family". Names without a usable surname become "Family".
func FamilyLabel(familyName string) string {
	surname, _, _ := strings.Cut(familyName, ",")
	surname = strings.TrimSpace(surname)
	if surname == "" {
		return "Family"
	}
	return cases.Title(language.Und).String(surname) + " family"
}
