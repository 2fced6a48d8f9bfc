package pipeline

import (
	"errors"
	"fmt"

	"uetingest/internal"
	"uetingest/internal/config"
	"uetingest/internal/storage"
)

// Reconciler turns validated records into database rows through a fixed
// dependency order of find-or-create and upsert calls. Storage errors
// propagate untouched; everything row-shaped comes back as a SectionResult
// so batch callers can skip while single-record callers can abort.
type Reconciler struct {
	db  *storage.DB
	cfg config.Config
}

func NewReconciler(db *storage.DB, cfg config.Config) *Reconciler {
	return &Reconciler{db: db, cfg: cfg}
}

// SectionResult distinguishes a reconciled section from a dropped record.
// Skipped results carry a reason; Fatal conditions surface as plain errors.
type SectionResult struct {
	SectionID int64
	Skipped   bool
	Reason    string
}

func skipped(reason string) SectionResult {
	return SectionResult{Skipped: true, Reason: reason}
}

// UpsertSection reconciles one timetable record: professor find-or-create,
// authoritative course lookup, suggested-class normalization, then the
// section upsert on UNIQUE(code, semester_id).
func (r *Reconciler) UpsertSection(rec internal.SectionRecord, semesterID string) (SectionResult, error) {
	rank, degree, professorName := SplitAcademicTitle(rec.ProfessorRaw)
	if professorName == "" {
		return skipped("missing_professor_name"), nil
	}
	professorID, err := r.db.EnsureProfessor(professorName, rank, degree)
	if err != nil {
		return SectionResult{}, err
	}

	course, err := r.db.GetCourseByCode(rec.CourseCode)
	if err != nil {
		return SectionResult{}, err
	}
	if course == nil {
		fmt.Printf("course %s not found in the database\n", rec.CourseCode)
		return skipped("unknown_course"), nil
	}

	var suggestedClassID *int64
	className, err := StandardizeClassName(rec.SuggestedClassRaw, r.cfg.AdmissionEpochYear)
	if err != nil {
		if !errors.Is(err, ErrInvalidClassCode) {
			return SectionResult{}, err
		}
		return skipped("bad_class_code"), nil
	}
	suggestedClassID, err = r.db.GetAdministrativeClassIDByName(className)
	if err != nil {
		return SectionResult{}, err
	}

	sectionID, err := r.db.UpsertCourseSection(rec.SectionCode, semesterID, course.ID, professorID, suggestedClassID)
	if err != nil {
		return SectionResult{}, err
	}
	return SectionResult{SectionID: sectionID}, nil
}

// SaveSectionSchedule reconciles the section and then inserts one fresh
// schedule row against it. If the section is skipped no schedule row is
// attempted, so schedules are never orphaned.
func (r *Reconciler) SaveSectionSchedule(rec internal.SectionRecord, semesterID string) (SectionResult, error) {
	res, err := r.UpsertSection(rec, semesterID)
	if err != nil || res.Skipped {
		return res, err
	}
	if err := r.db.InsertSchedule(res.SectionID, rec.DayOfWeek, rec.Periods, SessionType(rec.GroupIdentifier), rec.GroupIdentifier, rec.Location); err != nil {
		return SectionResult{}, err
	}
	return res, nil
}

// SaveStudent ensures the administrative class by name and inserts the
// student fresh; repeated runs duplicate student rows by design.
func (r *Reconciler) SaveStudent(rec internal.StudentRecord) error {
	classID, err := r.db.EnsureAdministrativeClass(rec.ClassName)
	if err != nil {
		return err
	}
	email := rec.Code + "@" + r.cfg.StudentEmailDomain
	return r.db.InsertStudent(rec.Code, rec.Name, rec.Gender, rec.Birthday, email, classID)
}

// SaveAdvisor applies one scraped advisor assignment: professor
// find-or-create by name, then an advisor update on the class row. Returns
// false when no class row matched the entry's class name; the professor row
// still exists after that, matching how reruns behave.
func (r *Reconciler) SaveAdvisor(entry internal.AdvisorEntry) (bool, error) {
	professorID, err := r.db.EnsureProfessor(entry.AdvisorName, nil, nil)
	if err != nil {
		return false, err
	}
	ok, err := r.db.SetClassAdvisor(entry.ClassName, professorID)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Printf("no administrative class named %q for advisor %q\n", entry.ClassName, entry.AdvisorName)
		return false, nil
	}
	fmt.Printf("updated class %q with advisor %q\n", entry.ClassName, entry.AdvisorName)
	return true, nil
}
