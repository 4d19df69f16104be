// Package dashboard is the admin view-model: statistics, the registration list,
// and local type/search filtering over it.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
	"github.com/dtroode/confreg-server/internal/model"
)

// Source fetches dashboard data from the API.
type Source interface {
	Stats(ctx context.Context) (handler.StatsResponse, error)
	List(ctx context.Context, registrationType, sort string) ([]handler.RegistrationResponse, error)
}

// View is what the dashboard currently shows.
type View struct {
	Stats         handler.StatsResponse
	Registrations []handler.RegistrationResponse
	Type          model.TypeFilter
	Sort          model.SortOrder
	Search        string
}

// Dashboard keeps the fetched list and applies filters locally.
type Dashboard struct {
	mu     sync.Mutex
	source Source

	stats  handler.StatsResponse
	all    []handler.RegistrationResponse
	typ    model.TypeFilter
	sort   model.SortOrder
	search string
}

// Option configures a Dashboard before its first Load.
type Option func(*Dashboard)

// WithSort sets the initial sort order. Unknown values mean newest first.
func WithSort(raw string) Option {
	return func(d *Dashboard) { d.sort = model.ParseSortOrder(raw) }
}

func New(source Source, opts ...Option) *Dashboard {
	d := &Dashboard{
		source: source,
		typ:    model.TypeFilterAll,
		sort:   model.SortDesc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load fetches statistics and the full registration list in the current sort order.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	sort := d.sort
	d.mu.Unlock()

	stats, err := d.source.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	regs, err := d.source.List(ctx, string(model.TypeFilterAll), string(sort))
	if err != nil {
		return fmt.Errorf("failed to fetch registrations: %w", err)
	}

	d.mu.Lock()
	d.stats = stats
	d.all = regs
	d.mu.Unlock()
	return nil
}

// SetSort changes the sort order and refetches the list when it changed.
func (d *Dashboard) SetSort(ctx context.Context, raw string) error {
	order := model.ParseSortOrder(raw)

	d.mu.Lock()
	if order == d.sort {
		d.mu.Unlock()
		return nil
	}
	d.sort = order
	d.mu.Unlock()

	regs, err := d.source.List(ctx, string(model.TypeFilterAll), string(order))
	if err != nil {
		return fmt.Errorf("failed to fetch registrations: %w", err)
	}

	d.mu.Lock()
	d.all = regs
	d.mu.Unlock()
	return nil
}

// SetType restricts the shown registrations to one type. Unknown values show all.
func (d *Dashboard) SetType(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typ = model.ParseTypeFilter(raw)
}

// SetSearch filters by a case-insensitive substring of name or email.
func (d *Dashboard) SetSearch(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = query
}

// View returns the filtered registrations in fetch order.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	wantType, typed := d.typ.Type()
	needle := strings.ToLower(d.search)

	shown := make([]handler.RegistrationResponse, 0, len(d.all))
	for _, r := range d.all {
		if typed && r.RegistrationType != string(wantType) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Email), needle) {
			continue
		}
		shown = append(shown, r)
	}

	return View{
		Stats:         d.stats,
		Registrations: shown,
		Type:          d.typ,
		Sort:          d.sort,
		Search:        d.search,
	}
}
