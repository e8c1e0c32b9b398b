package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagabot-engine/internal/domain"
)

func ts(d int) *time.Time {
	t := time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestListingsFirstWins(t *testing.T) {
	in := []domain.Listing{
		{Identity: "a", Title: "Dev Pleno", Source: domain.SourceGupy},
		{Identity: "b", Title: "Dev Júnior"},
		{Identity: "a", Title: "Dev (republicada)", Source: domain.SourceIndeed},
	}
	out := Listings(in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Identity)
	assert.Equal(t, "Dev Pleno", out[0].Title)
	assert.Equal(t, domain.SourceGupy, out[0].Source)
	assert.Equal(t, "b", out[1].Identity)
}

func TestListingsFieldMerge(t *testing.T) {
	in := []domain.Listing{
		{Identity: "a", Title: "Dev", Company: ""},
		{Identity: "a", Title: "Dev", Company: "Acme", Location: "Remoto", IsRemote: true, PublishedAt: ts(10)},
	}
	out := Listings(in)
	require.Len(t, out, 1)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "Remoto", out[0].Location)
	assert.True(t, out[0].IsRemote)
	require.NotNil(t, out[0].PublishedAt)
	assert.Equal(t, *ts(10), *out[0].PublishedAt)
}

func TestListingsMergeDoesNotOverwrite(t *testing.T) {
	in := []domain.Listing{
		{Identity: "a", Title: "Dev", Company: "First", PublishedAt: ts(5)},
		{Identity: "a", Title: "Dev", Company: "Second", PublishedAt: ts(9)},
	}
	out := Listings(in)
	require.Len(t, out, 1)
	assert.Equal(t, "First", out[0].Company)
	assert.Equal(t, *ts(5), *out[0].PublishedAt)
}

func TestListingsIdempotent(t *testing.T) {
	in := []domain.Listing{
		{Identity: "a", Title: "Dev"},
		{Identity: "b", Title: "QA", PublishedAt: ts(1)},
		{Identity: "a", Title: "Dev", Company: "Acme"},
		{Identity: "c", Title: "SRE"},
	}
	once := Listings(in)
	twice := Listings(once)
	assert.Equal(t, once, twice)
}

func TestListingsDropsEmptyIdentity(t *testing.T) {
	out := Listings([]domain.Listing{{Identity: "", Title: "ghost"}, {Identity: "a", Title: "Dev"}})
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Identity)
}
