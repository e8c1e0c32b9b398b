// LinkedIn's guest job search endpoint returns HTML fragments of job cards.
// Card URLs embed per-session tracking, so identity comes from the posting
// id in the entity URN.
package linkedin

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/source"
)

const (
	guestSearch = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	pageSize    = 25
)

type Config struct {
	Keywords []string
	Location string
	MaxPages int
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *source.HostLimiter
}

func New(cfg Config, limiter *source.HostLimiter) *Fetcher {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.Location == "" {
		cfg.Location = "Brasil"
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return string(domain.SourceLinkedIn) }

func (f *Fetcher) Fetch(ctx context.Context) (source.Result, error) {
	res := source.Result{Source: domain.SourceLinkedIn}

	for _, kw := range f.cfg.Keywords {
		for page := 0; page < f.cfg.MaxPages; page++ {
			raw, err := f.fetchPage(ctx, kw, page)
			if err != nil {
				log.Printf("[linkedin] keyword %q page %d: %v", kw, page, err)
				break
			}
			res.Raw = append(res.Raw, raw...)
			if len(raw) == 0 {
				break
			}
		}
	}
	return res, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, kw string, page int) ([]domain.RawListing, error) {
	q := url.Values{}
	q.Set("keywords", kw)
	q.Set("location", f.cfg.Location)
	q.Set("start", strconv.Itoa(page*pageSize))
	endpoint := guestSearch + "?" + q.Encode()

	if err := f.limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) vagabot/1.0")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("linkedin status %d", resp.StatusCode)
	}

	return ParseCards(resp.Body)
}

// ParseCards extracts job cards from a guest search response fragment.
func ParseCards(r io.Reader) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse html: %w", err)
	}

	var out []domain.RawListing
	doc.Find("div.base-card").Each(func(_ int, card *goquery.Selection) {
		href := strings.TrimSpace(card.Find("a.base-card__full-link").First().AttrOr("href", ""))
		jobID := postingID(card.AttrOr("data-entity-urn", ""))
		if href == "" && jobID == "" {
			return
		}

		posted := card.Find("time").First()
		postedText := posted.AttrOr("datetime", "")
		if postedText == "" {
			postedText = strings.TrimSpace(posted.Text())
		}

		out = append(out, domain.RawListing{
			URL:        href,
			SourceKey:  jobID,
			Title:      clean(card.Find("h3.base-search-card__title").First().Text()),
			Company:    clean(card.Find("h4.base-search-card__subtitle").First().Text()),
			Location:   clean(card.Find("span.job-search-card__location").First().Text()),
			PostedText: postedText,
		})
	})
	return out, nil
}

// postingID pulls the numeric id out of "urn:li:jobPosting:123456".
func postingID(urn string) string {
	if urn == "" {
		return ""
	}
	parts := strings.Split(urn, ":")
	id := parts[len(parts)-1]
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
