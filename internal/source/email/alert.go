package email

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vagabot-engine/internal/domain"
)

var reAlertJobID = regexp.MustCompile(`/jobs/view/(\d+)`)

// parseAlertHTML extracts job cards from a LinkedIn job-alert email body.
// Alert templates scatter several anchors per job (logo, title, footer), so
// anchors are merged by job id before a listing is emitted.
func parseAlertHTML(htmlBody string) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	type card struct {
		raw   domain.RawListing
		order int
	}
	byID := map[string]*card{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lh := strings.ToLower(href)
		if !strings.Contains(lh, "linkedin.com") || !strings.Contains(lh, "/jobs/view/") {
			return
		}

		jobURL := unwrapRedirect(href)
		m := reAlertJobID.FindStringSubmatch(jobURL)
		if m == nil {
			return
		}
		id := m[1]

		c, ok := byID[id]
		if !ok {
			c = &card{raw: domain.RawListing{URL: jobURL, SourceKey: id}}
			byID[id] = c
			order = append(order, id)
		}

		if t := strings.TrimSpace(a.Text()); looksLikeTitle(t) && len(t) > len(c.raw.Title) {
			c.raw.Title = t
		}

		// Company · Location lives in a <p> inside the same card table.
		box := a.Closest("table")
		if box.Length() == 0 {
			box = a.Parent()
		}
		box.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := strings.TrimSpace(p.Text())
			if c.raw.Company == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				c.raw.Company = strings.TrimSpace(parts[0])
				c.raw.Location = strings.TrimSpace(parts[1])
			}
		})
	})

	out := make([]domain.RawListing, 0, len(order))
	for _, id := range order {
		c := byID[id]
		if c.raw.Title == "" {
			continue
		}
		out = append(out, c.raw)
	}
	return out, nil
}

// unwrapRedirect resolves tracking-redirect hrefs to the target job URL.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	for _, key := range []string{"url", "originalReferer"} {
		if target := u.Query().Get(key); strings.Contains(target, "/jobs/view/") {
			if tu, err := url.Parse(target); err == nil {
				tu.RawQuery = ""
				tu.Fragment = ""
				return tu.String()
			}
		}
	}
	u.Fragment = ""
	return u.String()
}

func looksLikeTitle(s string) bool {
	if len(s) < 3 || strings.Contains(s, " · ") {
		return false
	}
	switch strings.ToLower(s) {
	case "ver vaga", "ver todas as vagas", "see job", "view job", "unsubscribe":
		return false
	}
	return true
}
