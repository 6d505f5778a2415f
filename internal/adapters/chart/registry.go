// Package chart owns the chart surfaces. Each surface holds at most one
// live handle; a new chart can only be created on a surface after the
// previous handle has been released.
package chart

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
	"github.com/okian/tcxview/pkg/metrics"
)

const defaultTheme = "macarons"

// Handle is one live chart bound to a surface.
type Handle struct {
	ID      string
	Surface string
	Kind    view.ChartKind
	Created time.Time

	html []byte
}

// HTML is the standalone page of the chart.
func (h *Handle) HTML() []byte { return h.html }

// Registry maps surface ids to their live handle. Writes happen on the
// event loop; the HTTP adapter reads concurrently.
type Registry struct {
	mu         sync.RWMutex
	handles    map[string]*Handle
	theme      string
	assetsHost string
	logger     logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handles: make(map[string]*Handle),
		theme:   defaultTheme,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("chart")
	}
	return r
}

// Create draws spec on its surface. It fails with ErrSurfaceBusy when the
// surface still holds a handle.
func (r *Registry) Create(spec view.ChartSpec) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(spec)
}

func (r *Registry) create(spec view.ChartSpec) (*Handle, error) {
	if _, busy := r.handles[spec.Surface]; busy {
		return nil, fmt.Errorf("%w: %s", ErrSurfaceBusy, spec.Surface)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	html, err := renderHTML(spec, id, r.theme, r.assetsHost)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", spec.Surface, err)
	}
	h := &Handle{ID: id, Surface: spec.Surface, Kind: spec.Kind, Created: time.Now(), html: html}
	r.handles[spec.Surface] = h
	metrics.UpdateChartHandles(len(r.handles))
	return h, nil
}

// Release frees the handle of surface.
func (r *Registry) Release(surface string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.release(surface)
}

func (r *Registry) release(surface string) error {
	if _, ok := r.handles[surface]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSurface, surface)
	}
	delete(r.handles, surface)
	metrics.UpdateChartHandles(len(r.handles))
	return nil
}

// Render releases any handle on spec's surface, then creates a new one.
func (r *Registry) Render(spec view.ChartSpec) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[spec.Surface]; ok {
		if err := r.release(spec.Surface); err != nil {
			return nil, err
		}
	}
	return r.create(spec)
}

// Sync makes the registry hold exactly the charts of specs: surfaces not in
// specs are released and every spec is redrawn. Failures are combined and
// do not stop the remaining surfaces.
func (r *Registry) Sync(ctx context.Context, specs []view.ChartSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]bool, len(specs))
	for _, s := range specs {
		wanted[s.Surface] = true
	}
	var err error
	for _, surface := range r.surfaces() {
		if !wanted[surface] {
			err = multierr.Append(err, r.release(surface))
		}
	}
	for _, s := range specs {
		if _, ok := r.handles[s.Surface]; ok {
			err = multierr.Append(err, r.release(s.Surface))
		}
		if _, cerr := r.create(s); cerr != nil {
			r.logger.Error(ctx, "chart render failed", logger.String("surface", s.Surface), logger.Error(cerr))
			err = multierr.Append(err, cerr)
		}
	}
	return err
}

// ReleaseAll frees every handle.
func (r *Registry) ReleaseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	for _, surface := range r.surfaces() {
		err = multierr.Append(err, r.release(surface))
	}
	return err
}

// Get returns the live handle of surface.
func (r *Registry) Get(surface string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[surface]
	return h, ok
}

// Surfaces lists the surfaces holding a handle, sorted.
func (r *Registry) Surfaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.surfaces()
}

// Len is the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

func (r *Registry) surfaces() []string {
	out := make([]string, 0, len(r.handles))
	for s := range r.handles {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
