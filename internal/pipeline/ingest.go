package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"uetingest/internal"
	"uetingest/internal/config"
	"uetingest/internal/source"
	"uetingest/internal/storage"
)

// IngestService drives the per-document pipelines. Processing is strictly
// sequential: one document at a time, one row fully reconciled before the
// next row is parsed.
type IngestService struct {
	db  *storage.DB
	cfg config.Config
	rec *Reconciler
	web *source.Client
}

func NewIngestService(db *storage.DB, cfg config.Config) *IngestService {
	return &IngestService{db: db, cfg: cfg, rec: NewReconciler(db, cfg), web: source.NewClient(cfg)}
}

// IngestSectionFolder feeds every timetable PDF in the folder through the
// section pipeline for one semester. Malformed rows are skipped and logged;
// storage errors terminate the run.
func (s *IngestService) IngestSectionFolder(folder, semesterID string) (internal.RunSummary, error) {
	files, err := listPDFs(folder)
	if err != nil {
		return internal.RunSummary{}, err
	}

	summary := internal.RunSummary{Sources: len(files)}
	outcomes := []internal.RowOutcome{}

	for _, path := range files {
		doc, err := source.OpenDocument(path)
		if err != nil {
			return internal.RunSummary{}, err
		}

		lineNo := 0
		for pageNo := 1; pageNo <= doc.NumPages(); pageNo++ {
			rows, err := doc.PageRows(pageNo)
			if err != nil {
				continue
			}
			for _, cells := range rows {
				lineNo++
				summary.Rows++
				rawLine := strings.Join(cells, " | ")

				rec, reason := ParseSectionRow(cells)
				if reason == "" {
					var result SectionResult
					result, err = s.rec.SaveSectionSchedule(rec, semesterID)
					if err != nil {
						_ = doc.Close()
						return internal.RunSummary{}, err
					}
					if result.Skipped {
						reason = result.Reason
					}
				}

				outcome := internal.RowOutcome{
					LineNo:    lineNo,
					Source:    internal.SourceSectionTable,
					SourceRef: filepath.Base(path),
					RawLine:   rawLine,
					Status:    internal.RowAccepted,
					Reason:    reason,
				}
				if reason != "" {
					outcome.Status = internal.RowSkipped
					summary.Skipped++
					fmt.Printf("skipped row %d of %s: %s\n", lineNo, filepath.Base(path), reason)
				} else {
					summary.Accepted++
					fmt.Printf("inserted schedule for section %s (%s)\n", rec.SectionCode, semesterID)
				}
				outcomes = append(outcomes, outcome)
			}
		}
		_ = doc.Close()
	}

	runID, err := s.recordRun("sections:ingest", summary, outcomes)
	if err != nil {
		return internal.RunSummary{}, err
	}
	summary.RunID = runID
	return summary, nil
}

// IngestRosterFolder feeds roster PDFs through the student pipeline. Rosters
// carry no semester; only the class name ties students to reference data.
func (s *IngestService) IngestRosterFolder(folder string) (internal.RunSummary, error) {
	files, err := listPDFs(folder)
	if err != nil {
		return internal.RunSummary{}, err
	}

	summary := internal.RunSummary{Sources: len(files)}
	outcomes := []internal.RowOutcome{}

	for _, path := range files {
		doc, err := source.OpenDocument(path)
		if err != nil {
			return internal.RunSummary{}, err
		}

		lineNo := 0
		for pageNo := 1; pageNo <= doc.NumPages(); pageNo++ {
			lines, err := doc.PageLines(pageNo)
			if err != nil {
				continue
			}
			for _, line := range lines {
				lineNo++
				rec, reason := ParseRosterLine(line)
				if reason == "not_a_record" {
					continue // header/footer noise, not worth logging
				}
				summary.Rows++

				if reason == "" {
					if err := s.rec.SaveStudent(rec); err != nil {
						_ = doc.Close()
						return internal.RunSummary{}, err
					}
				}

				outcome := internal.RowOutcome{
					LineNo:    lineNo,
					Source:    internal.SourceRosterText,
					SourceRef: filepath.Base(path),
					RawLine:   line,
					Status:    internal.RowAccepted,
					Reason:    reason,
				}
				if reason != "" {
					outcome.Status = internal.RowSkipped
					summary.Skipped++
				} else {
					summary.Accepted++
				}
				outcomes = append(outcomes, outcome)
			}
		}
		_ = doc.Close()
		fmt.Printf("processed roster %s\n", filepath.Base(path))
	}

	fmt.Printf("saved %d students\n", summary.Accepted)

	runID, err := s.recordRun("rosters:ingest", summary, outcomes)
	if err != nil {
		return internal.RunSummary{}, err
	}
	summary.RunID = runID
	return summary, nil
}

// ScrapeAdvisors builds the cohort-code lookup table once from the reference
// PDF, then walks every configured listing. Advisor updates are applied once
// per source; unknown cohort codes are skipped, not fatal.
func (s *IngestService) ScrapeAdvisors(ctx context.Context, referencePDF string) (internal.RunSummary, error) {
	classMap, err := s.buildClassMap(referencePDF)
	if err != nil {
		return internal.RunSummary{}, err
	}
	fmt.Printf("class map built from %s: %d cohort codes\n", filepath.Base(referencePDF), classMap.Len())

	summary := internal.RunSummary{Sources: len(s.cfg.AdvisorSources)}
	outcomes := []internal.RowOutcome{}

	for _, src := range s.cfg.AdvisorSources {
		fmt.Printf("starting scrape for %s...\n", src.Label)
		entries, err := s.web.FetchAdvisorEntries(ctx, src.Label, src.URL)
		if err != nil {
			return internal.RunSummary{}, err
		}

		srcOutcomes, err := s.processAdvisorEntries(src.Label, entries, classMap, &summary)
		if err != nil {
			return internal.RunSummary{}, err
		}
		outcomes = append(outcomes, srcOutcomes...)
	}

	runID, err := s.recordRun("advisors:scrape", summary, outcomes)
	if err != nil {
		return internal.RunSummary{}, err
	}
	summary.RunID = runID
	return summary, nil
}

// processAdvisorEntries resolves and applies the entries of one listing.
// An entry counts as accepted only when a class row was actually updated;
// a cohort code that resolves but matches no stored class is logged as
// skipped with its own reason.
func (s *IngestService) processAdvisorEntries(label string, entries []internal.AdvisorEntry, classMap ClassMap, summary *internal.RunSummary) ([]internal.RowOutcome, error) {
	outcomes := make([]internal.RowOutcome, 0, len(entries))
	for i, entry := range entries {
		summary.Rows++
		outcome := internal.RowOutcome{
			LineNo:    i + 1,
			Source:    internal.SourceAdvisorPage,
			SourceRef: label,
			RawLine:   entry.AdvisorName + "_" + entry.RawClass,
			Status:    internal.RowAccepted,
		}

		className, ok := classMap.Resolve(entry.RawClass)
		if !ok {
			outcome.Status = internal.RowSkipped
			outcome.Reason = "unknown_cohort_code"
			summary.Skipped++
			outcomes = append(outcomes, outcome)
			continue
		}
		entry.ClassName = className

		updated, err := s.rec.SaveAdvisor(entry)
		if err != nil {
			return nil, err
		}
		if !updated {
			outcome.Status = internal.RowSkipped
			outcome.Reason = "class_not_found"
			summary.Skipped++
			outcomes = append(outcomes, outcome)
			continue
		}
		summary.Accepted++
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *IngestService) buildClassMap(referencePDF string) (ClassMap, error) {
	doc, err := source.OpenDocument(referencePDF)
	if err != nil {
		return ClassMap{}, err
	}
	defer doc.Close()

	pairs := [][2]string{}
	for pageNo := 1; pageNo <= doc.NumPages(); pageNo++ {
		lines, err := doc.PageLines(pageNo)
		if err != nil {
			continue
		}
		for _, line := range lines {
			if canonical, display, ok := ParseReferenceLine(line); ok {
				pairs = append(pairs, [2]string{canonical, display})
			}
		}
	}

	return BuildClassMap(pairs, s.cfg.AdmissionEpochYear), nil
}

func (s *IngestService) recordRun(job string, summary internal.RunSummary, outcomes []internal.RowOutcome) (int64, error) {
	counts := map[string]int{
		"sources":  summary.Sources,
		"rows":     summary.Rows,
		"accepted": summary.Accepted,
		"skipped":  summary.Skipped,
	}
	runID, err := s.db.InsertRun(traceID(), job, counts)
	if err != nil {
		return 0, err
	}
	for _, outcome := range outcomes {
		if err := s.db.InsertRowOutcome(runID, outcome); err != nil {
			return 0, err
		}
	}
	return runID, nil
}

func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(folder, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
