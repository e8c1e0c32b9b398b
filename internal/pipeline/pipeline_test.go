package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagabot-engine/internal/config"
	"vagabot-engine/internal/dispatch"
	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/ledger"
	"vagabot-engine/internal/source"
	"vagabot-engine/internal/store"
)

type fakeFetcher struct {
	name      string
	raw       []domain.RawListing
	err       error
	finalized int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context) (source.Result, error) {
	if f.err != nil {
		return source.Result{}, f.err
	}
	return source.Result{
		Source: domain.SourceGupy,
		Raw:    f.raw,
		Finalize: func(ctx context.Context) error {
			f.finalized++
			return nil
		},
	}, nil
}

type fakeDispatcher struct {
	sent    []string
	failURL map[string]bool
}

func (d *fakeDispatcher) Send(ctx context.Context, l domain.Listing) error {
	if d.failURL[l.URL] {
		return errors.New("chat unreachable")
	}
	d.sent = append(d.sent, l.URL)
	return nil
}

func (d *fakeDispatcher) Status(ctx context.Context, text string) error { return nil }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.App.DataDir = t.TempDir()
	cfg.Scraping.SourceTimeoutSeconds = 10
	cfg.Delivery.DispatchTimeoutSeconds = 10
	return cfg
}

func openStore(t *testing.T, cfg config.Config) (*store.DB, *ledger.Ledger) {
	t.Helper()
	db, err := store.Open(filepath.Join(cfg.App.DataDir, "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ledger.New(db.Pool)
}

func TestRunCycleFailedSendStaysFresh(t *testing.T) {
	cfg := testConfig(t)
	db, led := openStore(t, cfg)

	raws := []domain.RawListing{
		{Title: "Analista de Dados", URL: "https://acme.gupy.io/job/x"},
		{Title: "Engenheiro de Dados", URL: "https://acme.gupy.io/job/y"},
	}
	fetcher := &fakeFetcher{name: "gupy", raw: raws}
	disp := &fakeDispatcher{failURL: map[string]bool{"https://acme.gupy.io/job/y": true}}

	eng, err := New(cfg, db, led, []source.Fetcher{fetcher}, disp)
	require.NoError(t, err)

	sum, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, []string{"https://acme.gupy.io/job/x"}, disp.sent)

	// the failed listing was never committed, so the next cycle retries it
	disp.failURL = nil
	sum, err = eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)
	assert.Equal(t, 1, sum.AlreadySent)
	assert.Equal(t, []string{"https://acme.gupy.io/job/x", "https://acme.gupy.io/job/y"}, disp.sent)
}

func TestRunCycleSourceFailureDegrades(t *testing.T) {
	cfg := testConfig(t)
	db, led := openStore(t, cfg)

	healthy := &fakeFetcher{name: "gupy", raw: []domain.RawListing{
		{Title: "Dev Backend", URL: "https://acme.gupy.io/job/1"},
	}}
	broken := &fakeFetcher{name: "indeed", err: errors.New("status 403")}
	disp := &fakeDispatcher{}

	eng, err := New(cfg, db, led, []source.Fetcher{healthy, broken}, disp)
	require.NoError(t, err)

	sum, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)

	byName := map[string]SourceReport{}
	for _, r := range sum.Sources {
		byName[r.Name] = r
	}
	assert.Equal(t, 1, byName["gupy"].Fetched)
	assert.Contains(t, byName["indeed"].Err, "403")
}

func TestRunCycleMalformedCountedNotFatal(t *testing.T) {
	cfg := testConfig(t)
	db, led := openStore(t, cfg)

	fetcher := &fakeFetcher{name: "gupy", raw: []domain.RawListing{
		{Title: "", URL: "https://acme.gupy.io/job/1"},
		{Title: "Dev", URL: "https://acme.gupy.io/job/2"},
	}}
	disp := &fakeDispatcher{}

	eng, err := New(cfg, db, led, []source.Fetcher{fetcher}, disp)
	require.NoError(t, err)

	sum, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Malformed)
	assert.Equal(t, 1, sum.Delivered)
}

func TestRunCycleBatchCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Delivery.BatchSize = 1
	db, led := openStore(t, cfg)

	fetcher := &fakeFetcher{name: "gupy", raw: []domain.RawListing{
		{Title: "Dev A", URL: "https://acme.gupy.io/job/a"},
		{Title: "Dev B", URL: "https://acme.gupy.io/job/b"},
	}}
	disp := &fakeDispatcher{}

	eng, err := New(cfg, db, led, []source.Fetcher{fetcher}, disp)
	require.NoError(t, err)

	sum, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Queued)
	assert.Equal(t, 1, sum.Delivered)

	// the overflow listing is still fresh next time
	sum, err = eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)
	assert.Len(t, disp.sent, 2)
}

func TestRunCycleFinalizeRunsAfterCommits(t *testing.T) {
	cfg := testConfig(t)
	db, led := openStore(t, cfg)

	fetcher := &fakeFetcher{name: "gupy", raw: []domain.RawListing{
		{Title: "Dev", URL: "https://acme.gupy.io/job/1"},
	}}

	eng, err := New(cfg, db, led, []source.Fetcher{fetcher}, &fakeDispatcher{})
	require.NoError(t, err)

	_, err = eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.finalized)
}

func TestRunCycleFilterRemovalsReported(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filters.RemoteOnly = true
	db, led := openStore(t, cfg)

	fetcher := &fakeFetcher{name: "gupy", raw: []domain.RawListing{
		{Title: "Dev Remoto", URL: "https://acme.gupy.io/job/1", Remote: true},
		{Title: "Dev Presencial", URL: "https://acme.gupy.io/job/2"},
	}}
	disp := &fakeDispatcher{}

	eng, err := New(cfg, db, led, []source.Fetcher{fetcher}, disp)
	require.NoError(t, err)

	sum, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Delivered)
	require.Len(t, sum.Removals, 1)
	assert.Equal(t, 1, sum.Removals[0].Count)
	assert.Equal(t, []string{"https://acme.gupy.io/job/2"}, sum.Removals[0].Identities)
}

var _ dispatch.Dispatcher = (*fakeDispatcher)(nil)
