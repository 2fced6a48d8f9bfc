package pipeline

import (
	"testing"

	"uetingest/internal"
)

func TestProcessAdvisorEntriesRunLog(t *testing.T) {
	db, cfg := openTestDB(t)
	if _, err := db.EnsureAdministrativeClass("QH-2021-I/CQ-CN1"); err != nil {
		t.Fatal(err)
	}

	classMap := BuildClassMap([][2]string{
		{"QH-2021-I/CQ-CN1", "QH-2021-I/CQ-CN 1"},
		{"QH-2021-I/CQ-CN2", "QH-2021-I/CQ-CN 2"},
	}, cfg.AdmissionEpochYear)

	svc := NewIngestService(db, cfg)
	summary := internal.RunSummary{}
	outcomes, err := svc.processAdvisorEntries("K66", []internal.AdvisorEntry{
		{AdvisorName: "Nguyen Van B", RawClass: "K66CN1"},
		{AdvisorName: "Tran Thi C", RawClass: "K66CN2"}, // resolves, but no class row stored
		{AdvisorName: "Le Van D", RawClass: "K99XX"},
	}, classMap, &summary)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Rows != 3 || summary.Accepted != 1 || summary.Skipped != 2 {
		t.Fatalf("summary=%+v", summary)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes=%d", len(outcomes))
	}
	if outcomes[0].Status != internal.RowAccepted || outcomes[0].Reason != "" {
		t.Fatalf("outcome[0]=%+v", outcomes[0])
	}
	if outcomes[1].Status != internal.RowSkipped || outcomes[1].Reason != "class_not_found" {
		t.Fatalf("outcome[1]=%+v", outcomes[1])
	}
	if outcomes[2].Status != internal.RowSkipped || outcomes[2].Reason != "unknown_cohort_code" {
		t.Fatalf("outcome[2]=%+v", outcomes[2])
	}

	// The professor row exists even when the class update found nothing.
	if advisor, _ := db.GetProfessorByName("Tran Thi C"); advisor == nil {
		t.Fatal("advisor not created")
	}
}
