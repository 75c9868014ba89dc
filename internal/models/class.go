package models

// Weekdays lists the seven timetable columns in schedule order. These are the
// physical column names of the timetable store.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// IsWeekday reports whether day matches one of the fixed timetable columns.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Timetable slot bounds. Slot numbers map onto the pre-seeded row ids.
const (
	MinSlot = 1
	MaxSlot = 15
)

// ReservedColumn is the date column shared by the homework and marks stores.
// Lesson names must never collide with it.
const ReservedColumn = "Date"

// DateLayout is the row-key format used by every dated store.
const DateLayout = "2006-01-02"

// RosterEntry is one enrolled student in a class roster.
type RosterEntry struct {
	Name       string `db:"Name" json:"name"`
	Surname    string `db:"Surname" json:"surname"`
	Patronymic string `db:"Patronymic" json:"patronymic"`
	Login      string `db:"Login" json:"login"`
}

// DaySlot is one row of a student's day view: the slot number, the lesson
// scheduled there (empty when none) and the homework noted for it.
type DaySlot struct {
	Slot     int    `json:"slot"`
	Lesson   string `json:"lesson"`
	Homework string `json:"homework"`
}

// VersionStamp records when a store was last touched and how many write
// passes it has seen. Diagnostic only; not used for conflict resolution.
type VersionStamp struct {
	Date     string `db:"Date" json:"date"`
	Revision int    `db:"Version" json:"revision"`
}
