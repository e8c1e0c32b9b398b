// Package pipeline runs the scrape, normalize, dedupe, filter, ledger and
// dispatch stages as one cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vagabot-engine/internal/config"
	"vagabot-engine/internal/dedup"
	"vagabot-engine/internal/dispatch"
	"vagabot-engine/internal/domain"
	"vagabot-engine/internal/filter"
	"vagabot-engine/internal/ledger"
	"vagabot-engine/internal/normalize"
	"vagabot-engine/internal/source"
	"vagabot-engine/internal/store"
)

// ErrCycleActive means another process (or an overlapping tick) holds the
// cycle lock. The caller should skip this run, not treat it as a failure.
var ErrCycleActive = errors.New("another cycle is already running")

type Engine struct {
	cfg      config.Config
	db       *store.DB
	ledger   *ledger.Ledger
	fetchers []source.Fetcher
	disp     dispatch.Dispatcher
	rules    []filter.Rule
	lock     *flock.Flock

	// mu serializes cycles inside this process; the flock covers other
	// processes sharing the same data dir.
	mu  sync.Mutex
	now func() time.Time
}

func New(cfg config.Config, db *store.DB, led *ledger.Ledger, fetchers []source.Fetcher, disp dispatch.Dispatcher) (*Engine, error) {
	rules, err := filter.Chain(cfg.Filters)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		db:       db,
		ledger:   led,
		fetchers: fetchers,
		disp:     disp,
		rules:    rules,
		lock:     flock.New(filepath.Join(cfg.App.DataDir, "cycle.lock")),
		now:      time.Now,
	}, nil
}

// SourceReport is the per-source outcome of the fetch stage.
type SourceReport struct {
	Name    string
	Fetched int
	Err     string
}

type Summary struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration

	Sources     []SourceReport
	Malformed   int
	Duplicates  int
	Removals    []filter.Removal
	AlreadySent int
	Queued      int
	Delivered   int
	Failed      int
}

// RunCycle executes one full cycle. A source failure degrades the cycle; a
// ledger read or write failure aborts it before anything else is sent.
func (e *Engine) RunCycle(ctx context.Context) (Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	locked, err := e.lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("cycle lock: %w", err)
	}
	if !locked {
		return Summary{}, ErrCycleActive
	}
	defer func() { _ = e.lock.Unlock() }()

	started := e.now()
	sum := Summary{CycleID: uuid.NewString(), StartedAt: started}
	log.Printf("[cycle %s] starting with %d sources", sum.CycleID, len(e.fetchers))

	results, reports := e.fetchAll(ctx)
	sum.Sources = reports

	var listings []domain.Listing
	var finalizers []func(context.Context) error
	for _, res := range results {
		if res.Finalize != nil {
			finalizers = append(finalizers, res.Finalize)
		}
		for _, raw := range res.Raw {
			l, err := normalize.Listing(raw, res.Source, started)
			if err != nil {
				sum.Malformed++
				log.Printf("[cycle %s] dropping %s record: %v", sum.CycleID, res.Source, err)
				continue
			}
			listings = append(listings, l)
		}
	}

	unique := dedup.Listings(listings)
	sum.Duplicates = len(listings) - len(unique)

	kept, removals := filter.Apply(unique, e.rules, started)
	sum.Removals = removals

	if err := store.SaveSnapshot(ctx, e.db.Pool, kept, started); err != nil {
		log.Printf("[cycle %s] snapshot save failed: %v", sum.CycleID, err)
	}

	fresh, alreadySent, err := e.ledger.Partition(ctx, kept)
	if err != nil {
		return sum, fmt.Errorf("cycle %s aborted: %w", sum.CycleID, err)
	}
	sum.AlreadySent = len(alreadySent)
	sum.Queued = len(fresh)

	if max := e.cfg.Delivery.BatchSize; max > 0 && len(fresh) > max {
		log.Printf("[cycle %s] capping batch at %d of %d fresh listings", sum.CycleID, max, len(fresh))
		fresh = fresh[:max]
	}

	if err := e.dispatchBatch(ctx, fresh, &sum); err != nil {
		return sum, err
	}

	for _, fin := range finalizers {
		if err := fin(ctx); err != nil {
			log.Printf("[cycle %s] source finalize failed: %v", sum.CycleID, err)
		}
	}

	sum.Duration = e.now().Sub(started)
	ledgerSize, err := e.ledger.Size(ctx)
	if err != nil {
		log.Printf("[cycle %s] ledger size: %v", sum.CycleID, err)
	}
	log.Printf("[cycle %s] done in %s: %d delivered, %d failed, %d already sent, ledger holds %d",
		sum.CycleID, sum.Duration.Round(time.Millisecond), sum.Delivered, sum.Failed, sum.AlreadySent, ledgerSize)

	if e.cfg.Delivery.SendStatus && e.disp != nil {
		if err := e.disp.Status(ctx, statusText(sum)); err != nil {
			log.Printf("[cycle %s] status message failed: %v", sum.CycleID, err)
		}
	}
	return sum, nil
}

// fetchAll runs every fetcher concurrently under its own timeout. A failing
// or slow source never cancels its siblings.
func (e *Engine) fetchAll(ctx context.Context) ([]source.Result, []SourceReport) {
	var g errgroup.Group
	resCh := make(chan source.Result, len(e.fetchers))
	repCh := make(chan SourceReport, len(e.fetchers))

	for _, f := range e.fetchers {
		f := f
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout())
			defer cancel()

			log.Printf("[%s] fetching", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[%s] unavailable: %v", f.Name(), err)
				repCh <- SourceReport{Name: f.Name(), Err: err.Error()}
				return nil
			}
			repCh <- SourceReport{Name: f.Name(), Fetched: len(res.Raw)}
			resCh <- res
			return nil
		})
	}
	_ = g.Wait()
	close(resCh)
	close(repCh)

	var results []source.Result
	for res := range resCh {
		results = append(results, res)
	}
	var reports []SourceReport
	for rep := range repCh {
		reports = append(reports, rep)
	}
	return results, reports
}

// dispatchBatch sends fresh listings one by one, committing each identity to
// the ledger only after its send is confirmed. A send failure skips the
// commit so the listing stays fresh for the next cycle; a commit failure
// stops the batch because continuing could double-deliver later.
func (e *Engine) dispatchBatch(ctx context.Context, fresh []domain.Listing, sum *Summary) error {
	if e.disp == nil {
		return nil
	}
	for _, l := range fresh {
		sctx, cancel := context.WithTimeout(ctx, e.cfg.DispatchTimeout())
		err := e.disp.Send(sctx, l)
		cancel()
		if err != nil {
			sum.Failed++
			log.Printf("[cycle %s] send %s failed: %v", sum.CycleID, l.Identity, err)
			continue
		}
		rec := domain.DeliveryRecord{Identity: l.Identity, DeliveredAt: e.now()}
		if err := e.ledger.Commit(ctx, rec); err != nil {
			return fmt.Errorf("cycle %s aborted after %d deliveries: %w", sum.CycleID, sum.Delivered, err)
		}
		sum.Delivered++
	}
	return nil
}

func statusText(s Summary) string {
	fetched := 0
	failed := 0
	for _, r := range s.Sources {
		fetched += r.Fetched
		if r.Err != "" {
			failed++
		}
	}
	text := fmt.Sprintf("📊 <b>Ciclo concluído</b>\nColetadas: %d (%d fontes", fetched, len(s.Sources))
	if failed > 0 {
		text += fmt.Sprintf(", %d falharam", failed)
	}
	text += fmt.Sprintf(")\nEnviadas: %d novas", s.Delivered)
	if s.Failed > 0 {
		text += fmt.Sprintf(" (%d falhas de envio)", s.Failed)
	}
	text += fmt.Sprintf("\nJá enviadas antes: %d", s.AlreadySent)
	for _, r := range s.Removals {
		text += fmt.Sprintf("\nFiltro %s: %d removidas", r.Rule, r.Count)
	}
	return text
}
