package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// End returns the first instant after the range.
func (r DateRange) End() time.Time {
	return r.To.AddDate(0, 0, 1)
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + " to " + r.To.Format(DateLayout)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ReportLine is the activity of one stock item within a report range
type ReportLine struct {
	ItemName   string          `json:"item_name"`
	Added      int             `json:"added"`
	Packed     int             `json:"packed"`
	Lost       int             `json:"lost"`
	AddedValue decimal.Decimal `json:"added_value"`
}

// SupplierCredit sums credit purchases per supplier within a report range
type SupplierCredit struct {
	Supplier string          `json:"supplier"`
	Total    decimal.Decimal `json:"total"`
}

// StockReport summarises the activity log over a date range
type StockReport struct {
	Range   DateRange        `json:"range"`
	Lines   []ReportLine     `json:"lines"`
	Credit  []SupplierCredit `json:"credit"`
	Entries int              `json:"entries"`
}

// BuildStockReport folds activity and credit records into per-item and per-supplier totals.
func BuildStockReport(r DateRange, activity []ActivityEntry, credit []CreditTransaction) StockReport {
	lines := make(map[string]*ReportLine)
	line := func(name string) *ReportLine {
		l, ok := lines[name]
		if !ok {
			l = &ReportLine{ItemName: name}
			lines[name] = l
		}
		return l
	}

	for _, a := range activity {
		switch a.Action {
		case ActivityAdd:
			l := line(a.ItemName)
			l.Added += a.Quantity
			l.AddedValue = l.AddedValue.Add(a.Amount)
		case ActivityUpdate:
			switch StockField(a.Field) {
			case FieldAddedToday:
				line(a.ItemName).Added += a.Quantity
			case FieldPacked:
				line(a.ItemName).Packed += a.Quantity
			case FieldLost:
				line(a.ItemName).Lost += a.Quantity
			}
		}
	}

	credits := make(map[string]decimal.Decimal)
	for _, c := range credit {
		credits[c.SupplierName] = credits[c.SupplierName].Add(c.Total)
	}

	report := StockReport{
		Range:   r,
		Lines:   make([]ReportLine, 0, len(lines)),
		Credit:  make([]SupplierCredit, 0, len(credits)),
		Entries: len(activity),
	}
	for _, l := range lines {
		report.Lines = append(report.Lines, *l)
	}
	sort.Slice(report.Lines, func(i, j int) bool { return report.Lines[i].ItemName < report.Lines[j].ItemName })

	for name, total := range credits {
		report.Credit = append(report.Credit, SupplierCredit{Supplier: name, Total: total})
	}
	sort.Slice(report.Credit, func(i, j int) bool { return report.Credit[i].Supplier < report.Credit[j].Supplier })

	return report
}
