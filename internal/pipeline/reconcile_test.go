package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"uetingest/internal"
	"uetingest/internal/config"
	"uetingest/internal/storage"
)

func openTestDB(t *testing.T) (*storage.DB, config.Config) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg, _ := config.Load()
	cfg.AdmissionEpochYear = 1955
	cfg.StudentEmailDomain = "vnu.edu.vn"
	return db, cfg
}

func timetableRecord() internal.SectionRecord {
	rec, reason := ParseSectionRow(sectionCells())
	if reason != "" {
		panic(reason)
	}
	return rec
}

func TestSaveSectionSchedule(t *testing.T) {
	db, cfg := openTestDB(t)
	if err := db.UpsertCourse("IT3010", "Intro", 3); err != nil {
		t.Fatal(err)
	}
	if _, err := db.EnsureAdministrativeClass("QH-2020-I/CQ-ABC"); err != nil {
		t.Fatal(err)
	}

	rec := NewReconciler(db, cfg)
	res, err := rec.SaveSectionSchedule(timetableRecord(), "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Fatalf("skipped: %s", res.Reason)
	}

	professor, err := db.GetProfessorByName("Nguyen Van A")
	if err != nil {
		t.Fatal(err)
	}
	if professor == nil {
		t.Fatal("professor not created")
	}

	section, err := db.GetSectionByKey("IT3010.1", "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if section == nil {
		t.Fatal("section not created")
	}
	if section.ProfessorID != professor.ID {
		t.Fatalf("professor ref=%d want %d", section.ProfessorID, professor.ID)
	}
	if section.SuggestedClassID == nil {
		t.Fatal("suggested class not linked")
	}

	count, err := db.CountSchedulesForSection(section.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("schedules=%d", count)
	}
}

func TestSaveSectionScheduleRerun(t *testing.T) {
	db, cfg := openTestDB(t)
	if err := db.UpsertCourse("IT3010", "Intro", 3); err != nil {
		t.Fatal(err)
	}

	rec := NewReconciler(db, cfg)
	first := timetableRecord()
	if _, err := rec.SaveSectionSchedule(first, "2024-2025-1"); err != nil {
		t.Fatal(err)
	}

	second := timetableRecord()
	second.ProfessorRaw = "Tran Van B"
	res, err := rec.SaveSectionSchedule(second, "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Fatalf("skipped: %s", res.Reason)
	}

	// One section row, professor reference from the second call.
	section, err := db.GetSectionByKey("IT3010.1", "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	professorB, err := db.GetProfessorByName("Tran Van B")
	if err != nil {
		t.Fatal(err)
	}
	if professorB == nil || section.ProfessorID != professorB.ID {
		t.Fatalf("last write did not win: %+v", section)
	}

	// Schedule rows are never deduplicated.
	count, err := db.CountSchedulesForSection(section.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("schedules=%d", count)
	}
}

func TestUpsertSectionUnknownCourse(t *testing.T) {
	db, cfg := openTestDB(t)
	rec := NewReconciler(db, cfg)

	res, err := rec.SaveSectionSchedule(timetableRecord(), "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped || res.Reason != "unknown_course" {
		t.Fatalf("res=%+v", res)
	}

	if section, _ := db.GetSectionByKey("IT3010.1", "2024-2025-1"); section != nil {
		t.Fatal("section created for unknown course")
	}
}

func TestUpsertSectionBadClassCode(t *testing.T) {
	db, cfg := openTestDB(t)
	if err := db.UpsertCourse("IT3010", "Intro", 3); err != nil {
		t.Fatal(err)
	}

	record := timetableRecord()
	record.SuggestedClassRaw = "6"

	rec := NewReconciler(db, cfg)
	res, err := rec.SaveSectionSchedule(record, "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Skipped || res.Reason != "bad_class_code" {
		t.Fatalf("res=%+v", res)
	}
}

func TestUpsertSectionAbsentClassIsNonFatal(t *testing.T) {
	db, cfg := openTestDB(t)
	if err := db.UpsertCourse("IT3010", "Intro", 3); err != nil {
		t.Fatal(err)
	}

	rec := NewReconciler(db, cfg)
	res, err := rec.SaveSectionSchedule(timetableRecord(), "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped {
		t.Fatalf("skipped: %s", res.Reason)
	}

	section, err := db.GetSectionByKey("IT3010.1", "2024-2025-1")
	if err != nil {
		t.Fatal(err)
	}
	if section.SuggestedClassID != nil {
		t.Fatalf("suggested class should be null, got %v", *section.SuggestedClassID)
	}
}

func TestSaveStudent(t *testing.T) {
	db, cfg := openTestDB(t)
	rec := NewReconciler(db, cfg)

	birthday := time.Date(2003, 2, 1, 0, 0, 0, 0, time.UTC)
	student := internal.StudentRecord{
		Code:      "21020001",
		Name:      "Nguyen Van An",
		Birthday:  &birthday,
		Gender:    "Nam",
		ClassName: "QH-2021-I/CQ-CN1",
	}
	if err := rec.SaveStudent(student); err != nil {
		t.Fatal(err)
	}

	classID, err := db.GetAdministrativeClassIDByName("QH-2021-I/CQ-CN1")
	if err != nil {
		t.Fatal(err)
	}
	if classID == nil {
		t.Fatal("class not created")
	}

	count, err := db.CountStudentsByCode("21020001")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("students=%d", count)
	}

	// Student inserts are never deduplicated at this layer.
	if err := rec.SaveStudent(student); err != nil {
		t.Fatal(err)
	}
	count, _ = db.CountStudentsByCode("21020001")
	if count != 2 {
		t.Fatalf("students=%d", count)
	}
}

func TestSaveAdvisor(t *testing.T) {
	db, cfg := openTestDB(t)
	if _, err := db.EnsureAdministrativeClass("QH-2021-I/CQ-CN1"); err != nil {
		t.Fatal(err)
	}

	rec := NewReconciler(db, cfg)
	updated, err := rec.SaveAdvisor(internal.AdvisorEntry{AdvisorName: "Nguyen Van B", ClassName: "QH-2021-I/CQ-CN1"})
	if err != nil {
		t.Fatal(err)
	}
	if !updated {
		t.Fatal("existing class not updated")
	}

	updated, err = rec.SaveAdvisor(internal.AdvisorEntry{AdvisorName: "Tran Thi C", ClassName: "QH-2099-I/CQ-XX"})
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Fatal("missing class reported as updated")
	}

	// The professor row exists either way.
	if advisor, _ := db.GetProfessorByName("Tran Thi C"); advisor == nil {
		t.Fatal("advisor not created")
	}
}
