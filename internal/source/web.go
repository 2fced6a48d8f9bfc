package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"uetingest/internal"
	"uetingest/internal/config"
)

// Client fetches paginated course-category listings. Pagination is not
// retried: a non-2xx response or an empty page both end the listing.
type Client struct {
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond},
	}
}

// FetchAdvisorEntries walks the listing page by page and returns every
// coursebox heading that splits into an advisor name and a raw class code.
// Transport errors propagate; a non-2xx status is a stop signal.
func (c *Client) FetchAdvisorEntries(ctx context.Context, label, baseURL string) ([]internal.AdvisorEntry, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	entries := []internal.AdvisorEntry{}
	for page := 1; ; page++ {
		fmt.Printf("scraping page %d for %s...\n", page, label)

		u := *base
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			fmt.Printf("failed to fetch page %d for %s: status %d\n", page, label, resp.StatusCode)
			break
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}

		boxes := doc.Find("div.coursebox")
		if boxes.Length() == 0 {
			fmt.Printf("no more courses found for %s\n", label)
			break
		}

		boxes.Each(func(_ int, box *goquery.Selection) {
			heading := strings.TrimSpace(box.Find("h3.coursename a").First().Text())
			advisor, rawClass, ok := ParseAdvisorHeading(heading)
			if !ok {
				return
			}
			entries = append(entries, internal.AdvisorEntry{AdvisorName: advisor, RawClass: rawClass})
		})
	}

	return entries, nil
}

// ParseAdvisorHeading extracts "advisor_classcode" from the parenthesized
// part of a coursebox heading, e.g. "CTSV (Nguyen Van B_K66CNTT4)".
func ParseAdvisorHeading(heading string) (advisor, rawClass string, ok bool) {
	start := strings.Index(heading, "(")
	end := strings.Index(heading, ")")
	if start < 0 || end <= start+1 {
		return "", "", false
	}
	inside := heading[start+1 : end]
	advisor, rawClass, found := strings.Cut(inside, "_")
	advisor = strings.TrimSpace(advisor)
	rawClass = strings.TrimSpace(rawClass)
	if !found || advisor == "" || rawClass == "" {
		return "", "", false
	}
	return advisor, rawClass, true
}
