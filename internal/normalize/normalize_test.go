package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagabot-engine/internal/domain"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestListingIdentityFromURL(t *testing.T) {
	raw := domain.RawListing{
		URL:   "HTTPS://portal.gupy.io/jobs/12345?utm_source=feed&utm_campaign=x&fbclid=abc#top",
		Title: "Dev Júnior",
	}
	l, err := Listing(raw, domain.SourceGupy, testNow)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.gupy.io/jobs/12345", l.Identity)
	assert.Equal(t, l.URL, l.Identity)

	// same page with different tracking params collapses to the same identity
	raw2 := raw
	raw2.URL = "https://portal.gupy.io/jobs/12345?utm_source=telegram"
	l2, err := Listing(raw2, domain.SourceGupy, testNow)
	require.NoError(t, err)
	assert.Equal(t, l.Identity, l2.Identity)
}

func TestListingIdentityFromSourceKey(t *testing.T) {
	raw := domain.RawListing{
		URL:       "https://br.linkedin.com/jobs/search?currentJobId=987&keywords=go&position=3",
		SourceKey: "987",
		Title:     "Analista",
	}
	l, err := Listing(raw, domain.SourceLinkedIn, testNow)
	require.NoError(t, err)
	assert.Equal(t, "linkedin:987", l.Identity)
}

func TestListingMalformed(t *testing.T) {
	_, err := Listing(domain.RawListing{URL: "https://x.test/1"}, domain.SourceGupy, testNow)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = Listing(domain.RawListing{Title: "Dev"}, domain.SourceGupy, testNow)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestListingRemoteCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawListing
		want bool
	}{
		{"explicit flag", domain.RawListing{Remote: true}, true},
		{"remoto in location", domain.RawListing{Location: "Remoto - Brasil"}, true},
		{"home office hint", domain.RawListing{RemoteHint: "Trabalho em Home Office"}, true},
		{"accented hint", domain.RawListing{RemoteHint: "trabalho à distância"}, true},
		{"onsite", domain.RawListing{Location: "São Paulo, SP"}, false},
		{"unknown defaults false", domain.RawListing{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw.Title = "Dev"
			tt.raw.URL = "https://x.test/1"
			l, err := Listing(tt.raw, domain.SourceGupy, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.IsRemote)
		})
	}
}

func TestContractType(t *testing.T) {
	assert.Equal(t, "Efetivo", ContractType("Vaga efetivo"))
	assert.Equal(t, "Temporário", ContractType("temporario"))
	assert.Equal(t, "Estágio", ContractType("ESTAGIO"))
	assert.Equal(t, "PJ", ContractType("p.j."))
	assert.Equal(t, "Freelance", ContractType(" Freelance "))
	assert.Equal(t, "", ContractType("  "))
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		in   string
		want *time.Time
	}{
		{"2026-03-12", day(2026, time.March, 12)},
		{"2026-03-12T08:00:00Z", day(2026, time.March, 12)},
		{"12/03/2026", day(2026, time.March, 12)},
		{"12/03", day(2026, time.March, 12)},
		{"12 de março de 2026", day(2026, time.March, 12)},
		{"12 de marco", day(2026, time.March, 12)},
		{"Publicada em 05/01/26", day(2026, time.January, 5)},
		{"hoje", day(2026, time.March, 15)},
		{"ontem", day(2026, time.March, 14)},
		{"", nil},
		{"N/A", nil},
		{"salário a combinar", nil},
		{"32/13/2026", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDate(tt.in, testNow)
			if tt.want == nil {
				assert.Nil(t, got, "expected no date for %q", tt.in)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseDateRelative(t *testing.T) {
	got := ParseDate("há 2 dias", testNow)
	require.NotNil(t, got)
	assert.Equal(t, testNow.AddDate(0, 0, -2), *got)

	got = ParseDate("3 days ago", testNow)
	require.NotNil(t, got)
	assert.Equal(t, testNow.AddDate(0, 0, -3), *got)

	got = ParseDate("há 1 semana", testNow)
	require.NotNil(t, got)
	assert.Equal(t, testNow.AddDate(0, 0, -7), *got)

	got = ParseDate("há 5 horas", testNow)
	require.NotNil(t, got)
	assert.Equal(t, testNow.Add(-5*time.Hour), *got)
}

func TestCanonicalURLDeterministicQuery(t *testing.T) {
	a := CanonicalURL("https://x.test/jobs?b=2&a=1")
	b := CanonicalURL("https://x.test/jobs?a=1&b=2")
	assert.Equal(t, a, b)
}
