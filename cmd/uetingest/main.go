package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"uetingest/internal/config"
	"uetingest/internal/pipeline"
	"uetingest/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "sections:ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		folder := fs.String("folder", "", "folder of timetable PDFs")
		semester := fs.String("semester", "", "semester identifier, e.g. 2024-2025-1")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*folder) == "" || strings.TrimSpace(*semester) == "" {
			must(fmt.Errorf("--folder and --semester are required"))
		}
		svc := pipeline.NewIngestService(db, cfg)
		summary, err := svc.IngestSectionFolder(*folder, *semester)
		must(err)
		fmt.Printf("sections ingest done runId=%d files=%d rows=%d accepted=%d skipped=%d\n",
			summary.RunID, summary.Sources, summary.Rows, summary.Accepted, summary.Skipped)
	case "rosters:ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		folder := fs.String("folder", "", "folder of roster PDFs")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*folder) == "" {
			must(fmt.Errorf("--folder is required"))
		}
		svc := pipeline.NewIngestService(db, cfg)
		summary, err := svc.IngestRosterFolder(*folder)
		must(err)
		fmt.Printf("rosters ingest done runId=%d files=%d rows=%d accepted=%d skipped=%d\n",
			summary.RunID, summary.Sources, summary.Rows, summary.Accepted, summary.Skipped)
	case "advisors:scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		reference := fs.String("reference", "", "class-name reference PDF")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*reference) == "" {
			must(fmt.Errorf("--reference is required"))
		}
		svc := pipeline.NewIngestService(db, cfg)
		summary, err := svc.ScrapeAdvisors(context.Background(), *reference)
		must(err)
		fmt.Printf("advisors scrape done runId=%d sources=%d entries=%d accepted=%d skipped=%d\n",
			summary.RunID, summary.Sources, summary.Rows, summary.Accepted, summary.Skipped)
	case "courses:seed":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "course list xlsx")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		count, err := pipeline.SeedCoursesFromXLSX(db, *input)
		must(err)
		fmt.Printf("courses seed done count=%d\n", count)
	case "export:report":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int64("runId", 0, "run id")
		out := fs.String("out", "", "output xlsx path (default OUTPUT_DIR/run-<id>-report.xlsx)")
		_ = fs.Parse(os.Args[2:])
		if *runID == 0 {
			must(fmt.Errorf("--runId is required"))
		}
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, fmt.Sprintf("run-%d-report.xlsx", *runID))
		}
		rows, err := db.GetReportRows(*runID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no report rows for runId=%d", *runID))
		}
		must(pipeline.ExportReportToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: uetingest <command>")
	fmt.Println("commands:")
	fmt.Println("  sections:ingest --folder=./source --semester=2024-2025-1")
	fmt.Println("  rosters:ingest --folder=./source")
	fmt.Println("  advisors:scrape --reference=name-conversion.pdf")
	fmt.Println("  courses:seed --input=courses.xlsx")
	fmt.Println("  export:report --runId=1 [--out=./out/report.xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
