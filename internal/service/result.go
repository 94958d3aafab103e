package service

import (
	"github.com/andresuchdata/stockbin/internal/domain"
)

// Result is what every mutation hands back: the freshly reloaded state plus
// a message, or a confirmation the user has to answer first.
type Result struct {
	Kind         domain.CommandKind   `json:"kind,omitempty"`
	Message      string               `json:"message"`
	Items        []domain.StockLevel  `json:"items,omitempty"`
	Suppliers    []domain.Supplier    `json:"suppliers,omitempty"`
	Bins         *domain.BinView      `json:"bins,omitempty"`
	Report       *domain.StockReport  `json:"report,omitempty"`
	Confirmation *domain.Confirmation `json:"confirmation,omitempty"`
}

// NeedsConfirmation reports whether nothing was written yet.
func (r *Result) NeedsConfirmation() bool {
	return r != nil && r.Confirmation != nil
}

func binResult(message string, agg *domain.BinAggregate) *Result {
	view := agg.View()
	return &Result{Message: message, Bins: &view}
}
