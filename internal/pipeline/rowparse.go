package pipeline

import (
	"strings"

	"uetingest/internal"
	"uetingest/internal/util"
)

// sectionColumnCount is the minimum column count of a timetable row:
// suggested class, course code, section code, course name, credit, capacity,
// professor, day of week, period, location, group identifier.
const sectionColumnCount = 11

// ParseSectionRow classifies one table row. It returns the candidate record,
// or an empty record and a non-empty skip reason for header/noise/malformed
// rows. Only trimming happens here; field coercion reasons come from the
// validators.
func ParseSectionRow(cells []string) (internal.SectionRecord, string) {
	if len(cells) < sectionColumnCount {
		return internal.SectionRecord{}, "short_row"
	}

	trimmed := make([]string, sectionColumnCount)
	for i := 0; i < sectionColumnCount; i++ {
		trimmed[i] = strings.TrimSpace(cells[i])
	}

	rec := internal.SectionRecord{
		SuggestedClassRaw: trimmed[0],
		CourseCode:        trimmed[1],
		SectionCode:       trimmed[2],
		CourseName:        trimmed[3],
		ProfessorRaw:      trimmed[6],
		DayOfWeek:         trimmed[7],
		Location:          trimmed[9],
		GroupIdentifier:   trimmed[10],
	}

	required := []string{rec.CourseCode, rec.CourseName, trimmed[4], rec.ProfessorRaw, rec.DayOfWeek, trimmed[8], rec.Location}
	for _, field := range required {
		if field == "" {
			return internal.SectionRecord{}, "missing_required_field"
		}
	}

	credit, err := parseInt(trimmed[4])
	if err != nil {
		return internal.SectionRecord{}, "bad_credit"
	}
	rec.Credit = credit

	if capacity, err := parseInt(trimmed[5]); err == nil {
		rec.Capacity = util.IntPtr(capacity)
	}

	periods, err := ExpandPeriods(trimmed[8])
	if err != nil {
		return internal.SectionRecord{}, "bad_period"
	}
	rec.Periods = periods

	return rec, ""
}

// looksLikeDataLine separates data lines from header/footer noise: roster
// and reference lines always open with a running index digit.
func looksLikeDataLine(line string) bool {
	return line != "" && line[0] >= '0' && line[0] <= '9'
}

// ParseRosterLine splits one roster text line around its pivot token, the
// first token that parses as dd/mm/yyyy. The leading running index is
// dropped; tokens between the student code and the pivot form the name, the
// token after the pivot is the gender, and the rest forms the class name.
func ParseRosterLine(line string) (internal.StudentRecord, string) {
	if !looksLikeDataLine(line) {
		return internal.StudentRecord{}, "not_a_record"
	}

	tokens := util.Fields(line)
	if len(tokens) < 2 {
		return internal.StudentRecord{}, "short_line"
	}
	tokens = tokens[1:] // running index

	code := tokens[0]
	pivot := -1
	for i := 1; i < len(tokens); i++ {
		if IsDate(tokens[i]) {
			pivot = i
			break
		}
	}
	if pivot < 0 {
		return internal.StudentRecord{}, "no_pivot_date"
	}
	if pivot+1 >= len(tokens) {
		return internal.StudentRecord{}, "short_line"
	}

	name := strings.Join(tokens[1:pivot], " ")
	if name == "" {
		return internal.StudentRecord{}, "missing_name"
	}
	className := strings.Join(tokens[pivot+2:], " ")
	if className == "" {
		return internal.StudentRecord{}, "missing_class"
	}

	return internal.StudentRecord{
		Code:      code,
		Name:      name,
		Birthday:  ParseBirthday(tokens[pivot]),
		Gender:    tokens[pivot+1],
		ClassName: className,
	}, ""
}

// ParseReferenceLine reads one line of the class-name reference sheet:
// "<idx> <canonical name> <display name>". Non-data lines are rejected the
// same way roster noise is.
func ParseReferenceLine(line string) (canonical, display string, ok bool) {
	if !looksLikeDataLine(line) {
		return "", "", false
	}
	tokens := util.Fields(line)
	if len(tokens) < 3 {
		return "", "", false
	}
	return tokens[1], tokens[2], true
}
