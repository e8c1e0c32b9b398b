package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vagabot-engine/internal/domain"
)

func TestFormatListing(t *testing.T) {
	pub := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	l := domain.Listing{
		Title:        "Analista de Dados <Jr>",
		Company:      "Acme & Co",
		Location:     "São Paulo, SP",
		ContractType: "Efetivo",
		PublishedAt:  &pub,
		Source:       domain.SourceGupy,
		URL:          "https://acme.gupy.io/job/123",
	}

	got := FormatListing(l)
	assert.Contains(t, got, "<b>Analista de Dados &lt;Jr&gt;</b>")
	assert.Contains(t, got, "Acme &amp; Co")
	assert.Contains(t, got, "12/03/2026")
	assert.Contains(t, got, `<a href="https://acme.gupy.io/job/123">Ver vaga</a>`)
}

func TestFormatListingSkipsEmptyFields(t *testing.T) {
	l := domain.Listing{
		Title:  "Dev",
		Source: domain.SourceIndeed,
		URL:    "https://br.indeed.com/viewjob?jk=1",
	}
	got := FormatListing(l)
	assert.NotContains(t, got, "🏢")
	assert.NotContains(t, got, "📅")
	assert.Contains(t, got, "🌐 indeed")
}
