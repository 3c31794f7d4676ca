package usecase

import (
	"fmt"
	"sync"
	"time"

	"FilingLens/internal/domain/models"
)

// ViewModel holds the committed, renderable state.
//
// Writers are the query coordinator (batch and heatmap commits) and the
// selection bridge. Every committed full batch comes from one FilterState
// snapshot (the basis); heatmap refreshes are only accepted against the
// basis they were issued for, so all visible charts share one filter.
type ViewModel struct {
	mu sync.RWMutex

	// sequencing
	lastFullIssued uint64
	batchSeq       uint64
	heatmapSeq     uint64
	inFlight       int

	revision  uint64
	basis     *models.FilterState
	heatDim   models.SentimentDimension
	metrics   *models.Metrics
	histogram []models.HistogramBin
	heatmap   *models.Heatmap
	scatter   *models.Scatter
	selected  *models.FilingRecord

	lastErr    error
	heatmapErr error
	updatedAt  time.Time

	onChange func()
}

func NewViewModel() *ViewModel {
	return &ViewModel{}
}

// OnChange sets a hook called after every visible change, outside the lock.
func (v *ViewModel) OnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

func (v *ViewModel) changed() {
	v.mu.RLock()
	fn := v.onChange
	v.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Snapshot returns a copy of the view. Slices are shared but never mutated after commit.
func (v *ViewModel) Snapshot() models.ViewSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := models.ViewSnapshot{
		Revision:         v.revision,
		Loading:          v.inFlight > 0,
		HeatmapDimension: v.heatDim,
		Metrics:          v.metrics,
		Histogram:        v.histogram,
		Heatmap:          v.heatmap,
		Scatter:          v.scatter,
		Selected:         v.selected,
		UpdatedAt:        v.updatedAt,
	}
	if v.basis != nil {
		b := v.basis.Clone()
		s.Basis = &b
	}
	if v.lastErr != nil {
		s.Error = v.lastErr.Error()
	}
	if v.heatmapErr != nil {
		s.HeatmapError = v.heatmapErr.Error()
	}
	return s
}

// Loaded reports whether a full batch has ever been committed.
func (v *ViewModel) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.revision > 0
}

// Loading reports whether any full query is in flight.
func (v *ViewModel) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.inFlight > 0
}

// beginFull marks a full query seq as issued and raises the loading flag.
func (v *ViewModel) beginFull(seq uint64) {
	v.mu.Lock()
	if seq > v.lastFullIssued {
		v.lastFullIssued = seq
	}
	v.inFlight++
	v.mu.Unlock()
	v.changed()
}

// endFull lowers the loading flag once every full query has settled.
func (v *ViewModel) endFull() {
	v.mu.Lock()
	if v.inFlight > 0 {
		v.inFlight--
	}
	v.mu.Unlock()
	v.changed()
}

// commitBatch replaces all four slots and clears the selection, unless a
// newer batch already committed. Returns models.ErrStaleResult on drop.
func (v *ViewModel) commitBatch(seq uint64, basis models.FilterState, r models.QueryBatchResult) error {
	v.mu.Lock()
	if seq <= v.batchSeq {
		v.mu.Unlock()
		return fmt.Errorf("%w: batch %d, committed %d", models.ErrStaleResult, seq, v.batchSeq)
	}

	b := basis.Clone()
	m := r.Metrics
	h := r.Heatmap
	sc := r.Scatter

	v.batchSeq = seq
	v.heatmapSeq = seq
	v.revision++
	v.basis = &b
	v.heatDim = basis.SentimentDimension
	v.metrics = &m
	v.histogram = r.Histogram
	v.heatmap = &h
	v.scatter = &sc
	v.selected = nil
	v.lastErr = nil
	v.heatmapErr = nil
	v.updatedAt = time.Now().UTC()
	v.mu.Unlock()

	v.changed()
	return nil
}

// failBatch surfaces err if seq is the most recently issued full query.
// Earlier queries' failures are dropped; the view is never touched otherwise.
func (v *ViewModel) failBatch(seq uint64, err error) bool {
	v.mu.Lock()
	surfaced := seq == v.lastFullIssued && seq > v.batchSeq
	if surfaced {
		v.lastErr = err
	}
	v.mu.Unlock()
	if surfaced {
		v.changed()
	}
	return surfaced
}

// heatmapBasis returns the committed filters and the batch they came from.
func (v *ViewModel) heatmapBasis() (models.FilterState, uint64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.basis == nil {
		return models.FilterState{}, 0, false
	}
	return v.basis.Clone(), v.batchSeq, true
}

// commitHeatmap replaces only the heatmap slot. It is dropped when a newer
// batch committed since it was issued, or a newer heatmap already landed.
func (v *ViewModel) commitHeatmap(seq, basisSeq uint64, dim models.SentimentDimension, h models.Heatmap) error {
	v.mu.Lock()
	if basisSeq != v.batchSeq || seq <= v.heatmapSeq {
		cur := v.heatmapSeq
		v.mu.Unlock()
		return fmt.Errorf("%w: heatmap %d, committed %d", models.ErrStaleResult, seq, cur)
	}
	v.heatmapSeq = seq
	v.heatmap = &h
	v.heatDim = dim
	v.heatmapErr = nil
	v.updatedAt = time.Now().UTC()
	v.mu.Unlock()

	v.changed()
	return nil
}

// failHeatmap records err against the heatmap slot if nothing newer has landed.
func (v *ViewModel) failHeatmap(seq, basisSeq uint64, err error) bool {
	v.mu.Lock()
	surfaced := basisSeq == v.batchSeq && seq > v.heatmapSeq
	if surfaced {
		v.heatmapErr = err
	}
	v.mu.Unlock()
	if surfaced {
		v.changed()
	}
	return surfaced
}

// heatmapDimension is the sentiment dimension of the visible heatmap.
func (v *ViewModel) heatmapDimension() models.SentimentDimension {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.heatDim
}

// Selected returns the selected filing, if any.
func (v *ViewModel) Selected() (models.FilingRecord, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected == nil {
		return models.FilingRecord{}, false
	}
	return *v.selected, true
}

// resolveAndSelect resolves ref against the current dataset and sets the
// selection in one step, so a batch commit cannot slip in between.
func (v *ViewModel) resolveAndSelect(ref models.PointRef) (models.FilingRecord, error) {
	v.mu.Lock()
	rec, ok := v.resolveLocked(ref)
	if !ok {
		v.mu.Unlock()
		return models.FilingRecord{}, models.ErrUnresolvedPoint
	}
	v.selected = &rec
	v.mu.Unlock()

	v.changed()
	return rec, nil
}

func (v *ViewModel) resolveLocked(ref models.PointRef) (models.FilingRecord, bool) {
	// a click rendered from an older dataset never resolves
	if ref.Revision != 0 && ref.Revision != v.revision {
		return models.FilingRecord{}, false
	}
	if ref.Record != nil {
		return *ref.Record, true
	}
	if ref.Index == nil || ref.Revision == 0 || v.scatter == nil {
		return models.FilingRecord{}, false
	}
	i := *ref.Index
	if i < 0 || i >= len(v.scatter.Points) {
		return models.FilingRecord{}, false
	}
	return v.scatter.Points[i], true
}

// clearSelection unsets the selection. Returns false if nothing was selected.
func (v *ViewModel) clearSelection() bool {
	v.mu.Lock()
	had := v.selected != nil
	v.selected = nil
	v.mu.Unlock()
	if had {
		v.changed()
	}
	return had
}
