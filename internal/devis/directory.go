package devis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSourceUnavailable wraps any failure reading one of the collections.
var ErrSourceUnavailable = errors.New("devis: source unavailable")

// Source reads the quote requests of one kind.
//
// search is the trimmed free-text query, empty for none. Implementations may
// use it to skip rows that cannot match, but must never drop a row the
// in-memory Matcher would accept. They must return rows in a stable order
// and never paginate.
type Source interface {
	Candidates(ctx context.Context, kind Kind, search string) ([]Candidate, error)
}

// Recorder receives directory timings. metrics.Collector implements it.
type Recorder interface {
	ObserveDirectory(typ string, d time.Duration, err error)
	SourceFailed(kind string)
}

// Page is one page of the directory.
type Page struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

// Directory is the unified, paginated, searchable listing over every kind.
// It is read-only and holds no mutable state.
type Directory struct {
	src  Source
	urls URLBuilder
	rec  Recorder
}

// Option configures a Directory.
type Option func(*Directory)

// WithURLBuilder sets the builder used for download links.
func WithURLBuilder(b URLBuilder) Option {
	return func(d *Directory) { d.urls = b }
}

// WithRecorder plugs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Directory) { d.rec = r }
}

// NewDirectory builds a directory over src.
func NewDirectory(src Source, opts ...Option) *Directory {
	d := &Directory{src: src}
	for _, o := range opts {
		o(d)
	}
	return d
}

// List returns one page of the directory. Any source failure fails the
// whole call; a partial union would make total wrong.
func (d *Directory) List(ctx context.Context, q Query) (page Page, err error) {
	q = q.Normalize()
	if d.rec != nil {
		start := time.Now()
		label := q.Type
		if len(q.Kinds()) == 0 {
			label = "unknown"
		}
		defer func() { d.rec.ObserveDirectory(label, time.Since(start), err) }()
	}

	kinds := q.Kinds()
	matcher := NewMatcher(q.Q)
	perKind := make([][]Item, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			cands, err := d.src.Candidates(gctx, kind, q.Q)
			if err != nil {
				// Siblings cancelled by the first failure are not failures.
				cancelled := gctx.Err() != nil && errors.Is(err, context.Canceled)
				if d.rec != nil && !cancelled {
					d.rec.SourceFailed(string(kind))
				}
				return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, kind, err)
			}
			items := make([]Item, 0, len(cands))
			for _, c := range cands {
				if matcher.Match(c) {
					items = append(items, Normalize(kind, c))
				}
			}
			perKind[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	var all []Item
	for _, items := range perKind {
		all = append(all, items...)
	}
	// Stable: equal dates keep kind order, then store order.
	slices.SortStableFunc(all, func(a, b Item) int {
		return b.sortTime().Compare(a.sortTime())
	})

	page = Page{
		Page:  q.Page,
		Limit: q.Limit,
		Total: len(all),
		Items: []Item{},
	}
	start := q.Offset()
	if start >= len(all) || start < 0 {
		return page, nil
	}
	end := min(start+q.Limit, len(all))
	page.Items = slices.Clone(all[start:end])
	for i := range page.Items {
		d.urls.Decorate(&page.Items[i])
	}
	return page, nil
}
