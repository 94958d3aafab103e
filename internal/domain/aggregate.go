package domain

import (
	"sort"
	"strings"
	"time"
)

// BinAggregate is the full per-team bin projection. It is rebuilt from the
// store after every mutation and never patched in place.
type BinAggregate struct {
	TeamID        string
	Date          time.Time
	Types         []BinType
	CustomTypes   []CustomBinType
	Parties       []BinParty
	StatusCounts  []BinStatusCount
	OpeningTotals map[string]int
	Note          string
}

// Partition names the two party views.
type Partition string

const (
	PartitionOwedToUs Partition = "owedToUs"
	PartitionWeOwe    Partition = "weOwe"
)

// PartySummary lists the displayed (always positive) counts of one party in a partition.
type PartySummary struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Bins map[string]int `json:"bins"`
}

// BinTypeByID returns the bin type with the given id.
func (a *BinAggregate) BinTypeByID(id string) (BinType, bool) {
	for _, t := range a.Types {
		if t.ID == id {
			return t, true
		}
	}
	return BinType{}, false
}

// FindBinType matches a bin type name case-insensitively.
func FindBinType(types []BinType, name string) (BinType, bool) {
	name = strings.TrimSpace(name)
	for _, t := range types {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return BinType{}, false
}

// FindParty matches a party name case-insensitively and exactly.
func FindParty(parties []BinParty, name string) (BinParty, bool) {
	name = strings.TrimSpace(name)
	for _, p := range parties {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return BinParty{}, false
}

// OwedToUs lists every party with at least one strictly positive balance.
func (a *BinAggregate) OwedToUs() []PartySummary {
	return a.partition(func(balance int) (int, bool) { return balance, balance > 0 })
}

// WeOwe lists every party with at least one strictly negative balance,
// showing the magnitude of what the team owes.
func (a *BinAggregate) WeOwe() []PartySummary {
	return a.partition(func(balance int) (int, bool) { return -balance, balance < 0 })
}

func (a *BinAggregate) partition(pick func(balance int) (int, bool)) []PartySummary {
	out := make([]PartySummary, 0)
	for _, p := range a.Parties {
		bins := make(map[string]int)
		for binID, balance := range p.Balances {
			if shown, ok := pick(balance); ok {
				bins[binID] = shown
			}
		}
		if len(bins) == 0 {
			continue
		}
		out = append(out, PartySummary{ID: p.ID, Name: p.Name, Bins: bins})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// StatusTotal sums the stored status counts of a bin type.
func (a *BinAggregate) StatusTotal(binTypeID string) int {
	total := 0
	for _, sc := range a.StatusCounts {
		if sc.BinTypeID == binTypeID {
			total += sc.Count
		}
	}
	return total
}

// StatusesOf returns the counts of a bin type keyed by status, zero-filled.
func (a *BinAggregate) StatusesOf(binTypeID string) map[BinStatus]int {
	out := make(map[BinStatus]int, len(BinStatuses))
	for _, s := range BinStatuses {
		out[s] = 0
	}
	for _, sc := range a.StatusCounts {
		if sc.BinTypeID == binTypeID {
			out[sc.Status] = sc.Count
		}
	}
	return out
}

// DisplayTotal is the count shown for a bin type. Mixed types show the sum of
// their custom sub-types when any of them is nonzero and fall back to their own
// stored counts otherwise.
func (a *BinAggregate) DisplayTotal(bt BinType) int {
	if bt.Category == BinCategoryMixed {
		sum, nonzero := 0, false
		for _, c := range a.CustomTypes {
			if c.Parent != bt.SubCategory {
				continue
			}
			sum += c.Count
			if c.Count != 0 {
				nonzero = true
			}
		}
		if nonzero {
			return sum
		}
	}
	return a.StatusTotal(bt.ID)
}

// BalanceSum is the sum of signed balances of a bin type across all parties.
func (a *BinAggregate) BalanceSum(binTypeID string) int {
	sum := 0
	for _, p := range a.Parties {
		sum += p.Balances[binTypeID]
	}
	return sum
}

// NowTotal is opening total plus what parties owe minus what the team owes
// plus the bins the company owns.
func (a *BinAggregate) NowTotal(bt BinType) int {
	return a.OpeningTotals[bt.ID] + a.BalanceSum(bt.ID) + bt.OwnedQuantity
}

// BinTypeSummary is one row of the bin dashboard
type BinTypeSummary struct {
	BinType
	Statuses     map[BinStatus]int `json:"statuses"`
	Total        int               `json:"total"`
	OpeningTotal int               `json:"opening_total"`
	NowTotal     int               `json:"now_total"`
	CustomTypes  []CustomBinType   `json:"custom_types,omitempty"`
}

// BinView is the JSON shape of the aggregate returned after every bin mutation
type BinView struct {
	Date     string           `json:"date"`
	Types    []BinTypeSummary `json:"types"`
	OwedToUs []PartySummary   `json:"owed_to_us"`
	WeOwe    []PartySummary   `json:"we_owe"`
	Note     string           `json:"note"`
}

func (a *BinAggregate) View() BinView {
	view := BinView{
		Date:     a.Date.Format(DateLayout),
		Types:    make([]BinTypeSummary, 0, len(a.Types)),
		OwedToUs: a.OwedToUs(),
		WeOwe:    a.WeOwe(),
		Note:     a.Note,
	}
	for _, bt := range a.Types {
		row := BinTypeSummary{
			BinType:      bt,
			Statuses:     a.StatusesOf(bt.ID),
			Total:        a.DisplayTotal(bt),
			OpeningTotal: a.OpeningTotals[bt.ID],
			NowTotal:     a.NowTotal(bt),
		}
		if bt.Category == BinCategoryMixed {
			for _, c := range a.CustomTypes {
				if c.Parent == bt.SubCategory {
					row.CustomTypes = append(row.CustomTypes, c)
				}
			}
		}
		view.Types = append(view.Types, row)
	}
	return view
}
