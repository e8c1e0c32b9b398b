// Indeed has no public API; this adapter walks the search result pages and
// pulls job cards out of the HTML.
package indeed

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
	baseURL  = "https://br.indeed.com"
	pageSize = 10
)

type Config struct {
	Keywords   []string
	MaxPages   int
	MaxDaysOld int // passed through as the fromage search param when > 0
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *source.HostLimiter
}

func New(cfg Config, limiter *source.HostLimiter) *Fetcher {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return string(domain.SourceIndeed) }

func (f *Fetcher) Fetch(ctx context.Context) (source.Result, error) {
	res := source.Result{Source: domain.SourceIndeed}

	for _, kw := range f.cfg.Keywords {
		for page := 0; page < f.cfg.MaxPages; page++ {
			raw, err := f.fetchPage(ctx, kw, page)
			if err != nil {
				log.Printf("[indeed] keyword %q page %d: %v", kw, page, err)
				break
			}
			res.Raw = append(res.Raw, raw...)
			if len(raw) < pageSize {
				break
			}
		}
	}
	return res, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, kw string, page int) ([]domain.RawListing, error) {
	q := url.Values{}
	q.Set("q", kw)
	q.Set("l", "Brasil")
	q.Set("sort", "date")
	if f.cfg.MaxDaysOld > 0 {
		q.Set("fromage", strconv.Itoa(f.cfg.MaxDaysOld))
	}
	if page > 0 {
		q.Set("start", strconv.Itoa(page*pageSize))
	}
	endpoint := baseURL + "/jobs?" + q.Encode()

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
		return nil, fmt.Errorf("indeed get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("indeed status %d", resp.StatusCode)
	}

	return ParseSearchPage(resp.Body)
}

// ParseSearchPage extracts the job cards from one search result page.
func ParseSearchPage(r io.Reader) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("indeed parse html: %w", err)
	}

	var out []domain.RawListing
	doc.Find("div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		anchor := card.Find("h2.jobTitle a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}

		title := cleanCardText(anchor.Text())
		if title == "" {
			title = cleanCardText(card.Find("h2.jobTitle span[title]").First().AttrOr("title", ""))
		}

		out = append(out, domain.RawListing{
			URL:        href,
			SourceKey:  anchor.AttrOr("data-jk", ""),
			Title:      title,
			Company:    cleanCardText(card.Find(`[data-testid="company-name"]`).First().Text()),
			Location:   cleanCardText(card.Find(`[data-testid="text-location"]`).First().Text()),
			PostedText: cleanCardText(card.Find(`[data-testid="myJobsStateDate"], span.date`).First().Text()),
		})
	})
	return out, nil
}

func cleanCardText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
