package report

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxSessionDates caps how many distinct session dates are considered,
	// shared across every selected gathering.
	MaxSessionDates = 12
	// MinAbsenceStreak is the smallest streak that gets reported.
	MinAbsenceStreak = 2
	// VisitorWindowDays is the trailing window for visitor counts.
	VisitorWindowDays = 42
	// MinVisitorCount is the smallest visit count that gets reported.
	MinVisitorCount = 2

	dateLayout = "2006-01-02"
)

// AttendanceEntry is one roster member's presence at a session. FamilyID 0
// means the individual belongs to no family.
type AttendanceEntry struct {
	IndividualID uint   `json:"individualId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FamilyID     uint   `json:"familyId,omitempty"`
	FamilyName   string `json:"familyName,omitempty"`
	Present      bool   `json:"present"`
}

type VisitorEntry struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// Session is one gathering's recorded attendance on one date.
type Session struct {
	GatheringID uint              `json:"gatheringId"`
	Date        string            `json:"date"`
	Attendance  []AttendanceEntry `json:"attendanceList"`
	Visitors    []VisitorEntry    `json:"visitors"`
}

// GroupedAbsence is either a whole family (Key "fam:<id>") or a single
// individual (Key "ind:<id>") with consecutive recent absences.
type GroupedAbsence struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Streak    int    `json:"streak"`
	FamilyID  uint   `json:"familyId,omitempty"`
	MemberIDs []uint `json:"memberIds"`
}

// IsFamily reports whether the entry groups a whole family.
func (g GroupedAbsence) IsFamily() bool {
	return strings.HasPrefix(g.Key, "fam:")
}

type VisitorFrequency struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	GroupedAbsences    []GroupedAbsence   `json:"groupedAbsences"`
	VisitorFrequencies []VisitorFrequency `json:"visitorFrequencies"`
}

type individual struct {
	id         uint
	name       string
	familyID   uint
	familyName string
	history    []bool
}

// streak counts consecutive absences from the most recent session backwards.
func (i *individual) streak() int {
	n := 0
	for _, present := range i.history {
		if present {
			break
		}
		n++
	}
	return n
}

// Summarize computes absence streaks and repeat visitors over the most recent
// MaxSessionDates session dates. It never fails: missing lists count as empty.
func Summarize(sessions []Session, now time.Time) Summary {
	limited := limitSessions(sessions)

	return Summary{
		GroupedAbsences:    groupAbsences(limited),
		VisitorFrequencies: visitorFrequencies(limited, now),
	}
}

// limitSessions keeps sessions whose date is among the newest MaxSessionDates
// distinct dates, ordered newest first. Sessions sharing a date keep their
// input order. Sessions with an unparseable date are dropped.
func limitSessions(sessions []Session) []Session {
	distinct := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		if _, err := time.Parse(dateLayout, s.Date); err != nil {
			continue
		}
		distinct[s.Date] = struct{}{}
	}

	allDates := make([]string, 0, len(distinct))
	for d := range distinct {
		allDates = append(allDates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(allDates)))
	if len(allDates) > MaxSessionDates {
		allDates = allDates[:MaxSessionDates]
	}

	keep := make(map[string]struct{}, len(allDates))
	for _, d := range allDates {
		keep[d] = struct{}{}
	}

	limited := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := keep[s.Date]; ok {
			limited = append(limited, s)
		}
	}
	sort.SliceStable(limited, func(i, j int) bool {
		return limited[i].Date > limited[j].Date
	})
	return limited
}

func groupAbsences(sessions []Session) []GroupedAbsence {
	people := make(map[uint]*individual)
	order := make([]uint, 0)

	for _, s := range sessions {
		for _, e := range s.Attendance {
			p, ok := people[e.IndividualID]
			if !ok {
				p = &individual{
					id:         e.IndividualID,
					name:       displayName(e.FirstName, e.LastName),
					familyID:   e.FamilyID,
					familyName: e.FamilyName,
				}
				people[e.IndividualID] = p
				order = append(order, e.IndividualID)
			}
			p.history = append(p.history, e.Present)
		}
	}

	families := make(map[uint][]uint)
	familyOrder := make([]uint, 0)
	for _, id := range order {
		p := people[id]
		if p.familyID == 0 {
			continue
		}
		if _, ok := families[p.familyID]; !ok {
			familyOrder = append(familyOrder, p.familyID)
		}
		families[p.familyID] = append(families[p.familyID], id)
	}

	out := make([]GroupedAbsence, 0)
	absorbed := make(map[uint]bool)

	for _, famID := range familyOrder {
		members := families[famID]
		if len(members) < 2 {
			continue
		}

		minStreak := -1
		qualifies := true
		for _, id := range members {
			st := people[id].streak()
			if st < MinAbsenceStreak {
				qualifies = false
				break
			}
			if minStreak < 0 || st < minStreak {
				minStreak = st
			}
		}
		if !qualifies {
			continue
		}

		ids := make([]uint, len(members))
		copy(ids, members)
		for _, id := range ids {
			absorbed[id] = true
		}
		out = append(out, GroupedAbsence{
			Key:       familyKey(famID),
			Name:      FamilyLabel(familyName(people, members)),
			Streak:    minStreak,
			FamilyID:  famID,
			MemberIDs: ids,
		})
	}

	for _, id := range order {
		if absorbed[id] {
			continue
		}
		p := people[id]
		st := p.streak()
		if st < MinAbsenceStreak {
			continue
		}
		out = append(out, GroupedAbsence{
			Key:       individualKey(id),
			Name:      p.name,
			Streak:    st,
			FamilyID:  p.familyID,
			MemberIDs: []uint{id},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func visitorFrequencies(sessions []Session, now time.Time) []VisitorFrequency {
	counts := make(map[string]*VisitorFrequency)

	for _, s := range sessions {
		if !withinVisitorWindow(s.Date, now) {
			continue
		}

		seen := make(map[string]bool)
		for _, v := range s.Visitors {
			if !v.Present {
				continue
			}
			key := v.ID
			if key == "" {
				key = v.Name
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			vf, ok := counts[key]
			if !ok {
				vf = &VisitorFrequency{Key: key, Name: v.Name}
				counts[key] = vf
			}
			vf.Count++
		}
	}

	out := make([]VisitorFrequency, 0, len(counts))
	for _, vf := range counts {
		if vf.Count >= MinVisitorCount {
			out = append(out, *vf)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// withinVisitorWindow compares by elapsed time, not calendar months.
func withinVisitorWindow(date string, now time.Time) bool {
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return false
	}
	elapsed := now.Sub(d).Milliseconds()
	return float64(elapsed)/float64(24*time.Hour/time.Millisecond) <= VisitorWindowDays
}

func familyName(people map[uint]*individual, members []uint) string {
	for _, id := range members {
		if name := people[id].familyName; name != "" {
			return name
		}
	}
	return ""
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func familyKey(id uint) string {
	return "fam:" + strconv.FormatUint(uint64(id), 10)
}

func individualKey(id uint) string {
	return "ind:" + strconv.FormatUint(uint64(id), 10)
}
