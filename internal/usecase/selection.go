package usecase

import (
	"FilingLens/internal/domain/models"
	"FilingLens/pkg/logger"
)

// SelectionBridge turns scatter point clicks into the view's selected filing.
type SelectionBridge struct {
	view   *ViewModel
	events *EventSink
	log    *logger.Logger
}

func NewSelectionBridge(view *ViewModel, events *EventSink, l *logger.Logger) *SelectionBridge {
	return &SelectionBridge{view: view, events: events, log: l.Component("selection")}
}

// Select resolves ref via its attached record, else its index into the
// rendered points of ref.Revision. An unresolvable ref returns
// models.ErrUnresolvedPoint and leaves the selection as it was.
func (b *SelectionBridge) Select(ref models.PointRef) (models.FilingRecord, error) {
	rec, err := b.view.resolveAndSelect(ref)
	if err != nil {
		b.log.Debug("point not resolved", logger.Uint64("revision", ref.Revision), logger.Bool("has_record", ref.Record != nil))
		return models.FilingRecord{}, err
	}
	b.events.Emit(models.EventSelectionChanged, 0, nil, map[string]interface{}{
		"accession_number": rec.AccessionNumber,
	})
	return rec, nil
}

// SelectRecord sets the selection to exactly rec.
func (b *SelectionBridge) SelectRecord(rec models.FilingRecord) models.FilingRecord {
	out, _ := b.Select(models.PointRef{Record: &rec})
	return out
}

// Clear unsets the selection.
func (b *SelectionBridge) Clear() {
	if b.view.clearSelection() {
		b.events.Emit(models.EventSelectionChanged, 0, nil, nil)
	}
}

func (b *SelectionBridge) Selected() (models.FilingRecord, bool) {
	return b.view.Selected()
}
