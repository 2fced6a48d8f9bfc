package internal

import "time"

type RowSource string

const (
	SourceSectionTable RowSource = "section_table"
	SourceRosterText   RowSource = "roster_text"
	SourceAdvisorPage  RowSource = "advisor_page"
)

type RowStatus string

const (
	RowAccepted RowStatus = "accepted"
	RowSkipped  RowStatus = "skipped"
)

// SectionRecord is one validated timetable row before reconciliation.
type SectionRecord struct {
	SuggestedClassRaw string
	CourseCode        string
	SectionCode       string
	CourseName        string
	Credit            int
	Capacity          *int
	ProfessorRaw      string
	DayOfWeek         string
	Periods           []int
	Location          string
	GroupIdentifier   string
}

// StudentRecord is one validated roster line. Birthday stays nil when the
// pivot token anchored the split but does not parse as a calendar date.
type StudentRecord struct {
	Code      string
	Name      string
	Birthday  *time.Time
	Gender    string
	ClassName string
}

// AdvisorEntry is one scraped coursebox heading, split into its parts.
// ClassName is the canonical administrative-class name after ClassMap
// resolution; entries that fail resolution carry an empty ClassName.
type AdvisorEntry struct {
	AdvisorName string
	RawClass    string
	ClassName   string
}

type ProfessorRow struct {
	ID           int64
	Name         string
	AcademicRank *string
	Degree       *string
}

type CourseRow struct {
	ID     int64
	Code   string
	Name   string
	Credit int
}

type SectionRow struct {
	ID               int64
	Code             string
	SemesterID       string
	CourseID         int64
	ProfessorID      int64
	SuggestedClassID *int64
}

// RowOutcome records what happened to one input row, for the run log and
// the review export.
type RowOutcome struct {
	LineNo    int
	Source    RowSource
	SourceRef string
	RawLine   string
	Status    RowStatus
	Reason    string
}

type RunSummary struct {
	RunID    int64
	Sources  int
	Rows     int
	Accepted int
	Skipped  int
}

type ReportRow struct {
	LineNo    int
	Source    string
	SourceRef string
	RawLine   string
	Status    string
	Reason    string
}
