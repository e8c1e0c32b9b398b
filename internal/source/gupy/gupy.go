// Gupy exposes a public job-search API, so this adapter is a plain JSON
// client: one query per keyword, paged until a short page.
package gupy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/source"
)

const (
	apiBase  = "https://portal.api.gupy.io/api/job"
	pageSize = 10
)

type Config struct {
	Keywords   []string
	RemoteOnly bool
	MaxPages   int
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

func (f *Fetcher) Name() string { return string(domain.SourceGupy) }

func (f *Fetcher) Fetch(ctx context.Context) (source.Result, error) {
	res := source.Result{Source: domain.SourceGupy}

	for _, kw := range f.cfg.Keywords {
		raw, err := f.fetchKeyword(ctx, kw)
		if err != nil {
			// one keyword failing must not sink the rest
			log.Printf("[gupy] keyword %q: %v", kw, err)
			continue
		}
		res.Raw = append(res.Raw, raw...)
	}
	return res, nil
}

type apiJob struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CareerPageName string `json:"careerPageName"`
	City           string `json:"city"`
	State          string `json:"state"`
	Type           string `json:"type"`
	IsRemoteWork   bool   `json:"isRemoteWork"`
	PublishedDate  string `json:"publishedDate"`
	JobURL         string `json:"jobUrl"`
}

type apiPage struct {
	Data []apiJob `json:"data"`
}

func (f *Fetcher) fetchKeyword(ctx context.Context, kw string) ([]domain.RawListing, error) {
	var out []domain.RawListing

	for page := 0; page < f.cfg.MaxPages; page++ {
		q := url.Values{}
		q.Set("name", kw)
		q.Set("offset", strconv.Itoa(page*pageSize))
		q.Set("limit", strconv.Itoa(pageSize))
		if f.cfg.RemoteOnly {
			q.Set("workplaceType", "remote")
		}
		endpoint := apiBase + "?" + q.Encode()

		if err := f.limiter.WaitURL(ctx, endpoint); err != nil {
			return out, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return out, err
		}
		req.Header.Set("User-Agent", "vagabot/1.0 (+local)")
		req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")

		resp, err := f.hc.Do(req)
		if err != nil {
			return out, fmt.Errorf("gupy get page %d: %w", page, err)
		}
		var body apiPage
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return out, fmt.Errorf("gupy page %d status %d", page, resp.StatusCode)
		}
		if decodeErr != nil {
			return out, fmt.Errorf("gupy decode page %d: %w", page, decodeErr)
		}

		for _, j := range body.Data {
			out = append(out, mapJob(j))
		}
		if len(body.Data) < pageSize {
			break
		}
	}
	return out, nil
}

// vacancyTypes translates the API's type codes to the labels the career
// pages show.
var vacancyTypes = map[string]string{
	"vacancy_type_effective":  "Efetivo",
	"vacancy_type_temporary":  "Temporário",
	"vacancy_type_internship": "Estágio",
	"vacancy_type_apprentice": "Aprendiz",
	"vacancy_legal_entity":    "PJ",
}

func mapJob(j apiJob) domain.RawListing {
	loc := j.City
	if j.State != "" {
		if loc != "" {
			loc += ", "
		}
		loc += j.State
	}
	contract := j.Type
	if label, ok := vacancyTypes[contract]; ok {
		contract = label
	}
	return domain.RawListing{
		URL:          j.JobURL,
		Title:        j.Name,
		Company:      j.CareerPageName,
		Location:     loc,
		Remote:       j.IsRemoteWork,
		ContractType: contract,
		PostedText:   j.PublishedDate,
	}
}
