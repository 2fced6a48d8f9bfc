package source

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"uetingest/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func htmlResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchAdvisorEntries(t *testing.T) {
	pageOne := `<div class="coursebox"><h3 class="coursename"><a>CTSV (Nguyen Van B_K66CN1)</a></h3></div>
<div class="coursebox"><h3 class="coursename"><a>CTSV (Tran Thi C_K66CN2)</a></h3></div>
<div class="coursebox"><h3 class="coursename"><a>Thong bao chung</a></h3></div>`

	cfg, _ := config.Load()
	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			switch r.URL.Query().Get("page") {
			case "1":
				return htmlResponse(pageOne), nil
			default:
				return htmlResponse(`<div class="nothing"></div>`), nil
			}
		}),
	}

	entries, err := client.FetchAdvisorEntries(context.Background(), "K66", "https://example.test/course/index.php?categoryid=71")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len=%d", len(entries))
	}
	if entries[0].AdvisorName != "Nguyen Van B" || entries[0].RawClass != "K66CN1" {
		t.Fatalf("entry=%+v", entries[0])
	}
}

func TestFetchAdvisorEntriesStopsOnStatus(t *testing.T) {
	cfg, _ := config.Load()
	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("not found")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	entries, err := client.FetchAdvisorEntries(context.Background(), "K66", "https://example.test/course/index.php?categoryid=71")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("len=%d", len(entries))
	}
}

func TestParseAdvisorHeading(t *testing.T) {
	cases := []struct {
		input   string
		advisor string
		class   string
		ok      bool
	}{
		{input: "CTSV (Nguyen Van B_K66CN1)", advisor: "Nguyen Van B", class: "K66CN1", ok: true},
		{input: "( Le Thi C _ K67CN2 )", advisor: "Le Thi C", class: "K67CN2", ok: true},
		{input: "Thong bao chung", ok: false},
		{input: "CTSV (no separator)", ok: false},
		{input: "CTSV ()", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			advisor, class, ok := ParseAdvisorHeading(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && (advisor != tc.advisor || class != tc.class) {
				t.Fatalf("got %q %q", advisor, class)
			}
		})
	}
}
