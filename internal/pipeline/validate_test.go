package pipeline

import "testing"

func TestExpandPeriods(t *testing.T) {
	cases := []struct {
		input string
		want  []int
	}{
		{input: "7", want: []int{7}},
		{input: "3-4", want: []int{3, 4}},
		{input: " 9-10 ", want: []int{9, 10}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ExpandPeriods(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}

	for _, bad := range []string{"", "x", "3-x", "a-4"} {
		if _, err := ExpandPeriods(bad); err == nil {
			t.Fatalf("no error for %q", bad)
		}
	}
}

func TestSessionType(t *testing.T) {
	for _, theory := range []string{"CL", "cl", " CL ", "Cl"} {
		if got := SessionType(theory); got != SessionTheory {
			t.Fatalf("%q -> %q", theory, got)
		}
	}
	for _, practical := range []string{"N1", "1", "", "CLC"} {
		if got := SessionType(practical); got != SessionPractical {
			t.Fatalf("%q -> %q", practical, got)
		}
	}
}

func TestSplitAcademicTitle(t *testing.T) {
	cases := []struct {
		input      string
		wantRank   string
		wantDegree string
		wantName   string
	}{
		{input: "PGS.TS. Nguyễn Văn A", wantRank: "PGS", wantDegree: "TS", wantName: "Nguyễn Văn A"},
		{input: "GS.TSKH. Trần B", wantRank: "GS", wantDegree: "TSKH", wantName: "Trần B"},
		{input: "TS. Lê Thị C", wantDegree: "TS", wantName: "Lê Thị C"},
		{input: "ThS Phạm D", wantDegree: "ThS", wantName: "Phạm D"},
		{input: "Nguyễn Văn A", wantName: "Nguyễn Văn A"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			rank, degree, name := SplitAcademicTitle(tc.input)
			if name != tc.wantName {
				t.Fatalf("name=%q want %q", name, tc.wantName)
			}
			if tc.wantRank == "" && rank != nil {
				t.Fatalf("rank=%v", *rank)
			}
			if tc.wantRank != "" && (rank == nil || *rank != tc.wantRank) {
				t.Fatalf("rank=%v want %q", rank, tc.wantRank)
			}
			if tc.wantDegree == "" && degree != nil {
				t.Fatalf("degree=%v", *degree)
			}
			if tc.wantDegree != "" && (degree == nil || *degree != tc.wantDegree) {
				t.Fatalf("degree=%v want %q", degree, tc.wantDegree)
			}
		})
	}
}

func TestParseBirthday(t *testing.T) {
	if got := ParseBirthday("29/02/2004"); got == nil {
		t.Fatal("leap day rejected")
	}
	if got := ParseBirthday("31/02/2004"); got != nil {
		t.Fatalf("impossible date accepted: %v", got)
	}
	if got := ParseBirthday("2004-02-29"); got != nil {
		t.Fatalf("wrong layout accepted: %v", got)
	}
}
