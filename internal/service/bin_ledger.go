package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository"
	"golang.org/x/sync/errgroup"
)

// BinStore is the part of the store the ledger works against.
type BinStore interface {
	repository.BinRepository
	repository.HistoryRepository
}

// DirectEditInput overwrites one party balance with a user-facing (positive) value.
// Partition is inferred from the current balance when empty.
type DirectEditInput struct {
	PartyID   string           `json:"party_id" binding:"required"`
	BinTypeID string           `json:"bin_type_id" binding:"required"`
	Value     int              `json:"value"`
	Partition domain.Partition `json:"partition,omitempty"`
}

// BinTypeInput describes a new bin type.
type BinTypeInput struct {
	Name          string                  `json:"name" binding:"required"`
	Color         string                  `json:"color"`
	Category      domain.BinCategory      `json:"category"`
	SubCategory   domain.MixedSubCategory `json:"sub_category"`
	OwnedQuantity int                     `json:"owned_quantity"`
}

// BinLedger owns every bin balance, status and configuration change. Each
// mutation is followed by a full reload of the team aggregate.
type BinLedger struct {
	store        BinStore
	pending      *PendingStore
	notes        *NoteDebouncer
	historyLimit int
	now          func() time.Time
}

func NewBinLedger(store BinStore, pending *PendingStore, notes *NoteDebouncer, historyLimit int) *BinLedger {
	if notes == nil {
		notes = NewNoteDebouncer(store, time.Second)
	}
	if historyLimit <= 0 {
		historyLimit = repository.HistoryLimit
	}
	return &BinLedger{
		store:        store,
		pending:      pending,
		notes:        notes,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// Aggregate reloads the full bin projection of the team for date (today when zero).
func (l *BinLedger) Aggregate(ctx context.Context, s domain.Session, date time.Time) (*domain.BinAggregate, error) {
	if date.IsZero() {
		date = l.now()
	}
	agg := &domain.BinAggregate{TeamID: s.TeamID, Date: domain.Day(date)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		types, err := l.store.ListBinTypes(gctx, s.TeamID)
		agg.Types = types
		return err
	})
	g.Go(func() error {
		custom, err := l.store.ListCustomBinTypes(gctx, s.TeamID)
		agg.CustomTypes = custom
		return err
	})
	g.Go(func() error {
		parties, err := l.store.ListParties(gctx, s.TeamID)
		agg.Parties = parties
		return err
	})
	g.Go(func() error {
		counts, err := l.store.ListStatusCounts(gctx, s.TeamID)
		agg.StatusCounts = counts
		return err
	})
	g.Go(func() error {
		totals, err := l.store.GetOpeningTotals(gctx, s.TeamID, agg.Date)
		agg.OpeningTotals = totals
		return err
	})
	g.Go(func() error {
		note, err := l.store.GetNote(gctx, s.TeamID)
		agg.Note = note
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reload bin data: %w", err)
	}

	if note, ok := l.notes.Pending(s.TeamID); ok {
		agg.Note = note
	}
	if agg.OpeningTotals == nil {
		agg.OpeningTotals = make(map[string]int)
	}
	return agg, nil
}

func (l *BinLedger) reload(ctx context.Context, s domain.Session, message string) (*Result, error) {
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	return binResult(message, agg), nil
}

func (l *BinLedger) entry(s domain.Session, kind domain.HistoryType, description string, details domain.HistoryDetails) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		TeamID:      s.TeamID,
		Type:        kind,
		Description: description,
		Details:     details,
		CreatedBy:   s.Actor(),
	}
}

// RecordMovement applies a sent/received/returned movement to the party balance.
func (l *BinLedger) RecordMovement(ctx context.Context, s domain.Session, in domain.MovementInput) (*Result, error) {
	movement, err := domain.ParseMovementType(string(in.Type))
	if err != nil {
		return nil, err
	}
	in.Type = movement
	if err := in.Validate(); err != nil {
		return nil, err
	}

	types, err := l.store.ListBinTypes(ctx, s.TeamID)
	if err != nil {
		return nil, err
	}
	bt, ok := resolveBinType(types, in)
	if !ok {
		return nil, fmt.Errorf("%w: unknown bin type %q", domain.ErrValidation, in.BinName)
	}

	party, err := l.findOrCreateParty(ctx, s, in.PartyName)
	if err != nil {
		return nil, err
	}

	current, err := l.store.GetBalance(ctx, s.TeamID, party.ID, bt.ID)
	if err != nil {
		return nil, err
	}
	next := current + movement.Delta(in.Quantity)

	description := describeMovement(movement, in.Quantity, bt.Name, party.Name, in.Transporter)
	details := domain.HistoryDetails{
		MovementType: movement,
		Quantity:     in.Quantity,
		Bin:          bt.Name,
		Party:        party.Name,
		Transporter:  strings.TrimSpace(in.Transporter),
		Contents:     strings.TrimSpace(in.Contents),
		OldValue:     domain.IntPtr(current),
		NewValue:     domain.IntPtr(next),
	}
	balance := domain.BinBalance{TeamID: s.TeamID, PartyID: party.ID, BinTypeID: bt.ID, Balance: next}
	if err := l.store.SaveBalance(ctx, balance, l.entry(s, domain.HistoryMovement, description, details)); err != nil {
		return nil, err
	}

	return l.reload(ctx, s, description)
}

func resolveBinType(types []domain.BinType, in domain.MovementInput) (domain.BinType, bool) {
	if in.BinTypeID != "" {
		for _, t := range types {
			if t.ID == in.BinTypeID {
				return t, true
			}
		}
		return domain.BinType{}, false
	}
	return domain.FindBinType(types, in.BinName)
}

func describeMovement(m domain.MovementType, qty int, bin, party, transporter string) string {
	var b strings.Builder
	switch m {
	case domain.MovementSent:
		fmt.Fprintf(&b, "Sent %d %s to %s", qty, bin, party)
	case domain.MovementReceived:
		fmt.Fprintf(&b, "Received %d %s from %s", qty, bin, party)
	default:
		fmt.Fprintf(&b, "Returned %d %s from %s", qty, bin, party)
	}
	if t := strings.TrimSpace(transporter); t != "" {
		fmt.Fprintf(&b, " via %s", t)
	}
	return b.String()
}

func (l *BinLedger) findOrCreateParty(ctx context.Context, s domain.Session, name string) (domain.BinParty, error) {
	parties, err := l.store.ListParties(ctx, s.TeamID)
	if err != nil {
		return domain.BinParty{}, err
	}
	if p, ok := domain.FindParty(parties, name); ok {
		return p, nil
	}

	party := &domain.BinParty{TeamID: s.TeamID, Name: strings.TrimSpace(name)}
	entry := l.entry(s, domain.HistoryParty, "Added party "+party.Name, domain.HistoryDetails{Party: party.Name})
	if err := l.store.CreateParty(ctx, party, entry); err != nil {
		return domain.BinParty{}, err
	}
	return *party, nil
}

// PrepareDirectEdit describes the edit and parks it until the user confirms.
func (l *BinLedger) PrepareDirectEdit(ctx context.Context, s domain.Session, in DirectEditInput) (*Result, error) {
	if in.Value < 0 {
		return nil, fmt.Errorf("%w: value cannot be negative", domain.ErrValidation)
	}
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	party, bt, err := lookupPosition(agg, in.PartyID, in.BinTypeID)
	if err != nil {
		return nil, err
	}

	current := party.Balances[bt.ID]
	if in.Partition, err = resolvePartition(in.Partition, current); err != nil {
		return nil, err
	}

	shown := displayed(current, in.Partition)
	message := fmt.Sprintf("Change %s %s (%s) from %d to %d?", party.Name, bt.Name, partitionLabel(in.Partition), shown, in.Value)
	confirmation, err := l.pending.Create(ctx, s, PendingAction{Kind: domain.ConfirmDirectEdit, DirectEdit: &in},
		message, fmt.Sprint(shown), fmt.Sprint(in.Value))
	if err != nil {
		return nil, err
	}

	result := binResult(message, agg)
	result.Confirmation = confirmation
	return result, nil
}

// CommitDirectEdit writes the confirmed edit. It is audited even when nothing changes.
func (l *BinLedger) CommitDirectEdit(ctx context.Context, s domain.Session, in DirectEditInput) (*Result, error) {
	if in.Value < 0 {
		return nil, fmt.Errorf("%w: value cannot be negative", domain.ErrValidation)
	}
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	party, bt, err := lookupPosition(agg, in.PartyID, in.BinTypeID)
	if err != nil {
		return nil, err
	}

	current := party.Balances[bt.ID]
	partition, err := resolvePartition(in.Partition, current)
	if err != nil {
		return nil, err
	}
	stored := in.Value
	if partition == domain.PartitionWeOwe {
		stored = -in.Value
	}

	description := fmt.Sprintf("Edited %s %s (%s): %d → %d", party.Name, bt.Name, partitionLabel(partition), displayed(current, partition), in.Value)
	details := domain.HistoryDetails{
		Bin:      bt.Name,
		Party:    party.Name,
		OldValue: domain.IntPtr(current),
		NewValue: domain.IntPtr(stored),
	}
	balance := domain.BinBalance{TeamID: s.TeamID, PartyID: party.ID, BinTypeID: bt.ID, Balance: stored}
	if err := l.store.SaveBalance(ctx, balance, l.entry(s, domain.HistoryEdit, description, details)); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

func lookupPosition(agg *domain.BinAggregate, partyID, binTypeID string) (domain.BinParty, domain.BinType, error) {
	bt, ok := agg.BinTypeByID(binTypeID)
	if !ok {
		return domain.BinParty{}, domain.BinType{}, fmt.Errorf("bin type %s: %w", binTypeID, domain.ErrNotFound)
	}
	for _, p := range agg.Parties {
		if p.ID == partyID {
			return p, bt, nil
		}
	}
	return domain.BinParty{}, domain.BinType{}, fmt.Errorf("party %s: %w", partyID, domain.ErrNotFound)
}

// resolvePartition infers the partition from the sign of the current balance.
// An explicit partition may only pick a side while the balance is zero.
func resolvePartition(p domain.Partition, current int) (domain.Partition, error) {
	actual := domain.PartitionOwedToUs
	if current < 0 {
		actual = domain.PartitionWeOwe
	}
	switch p {
	case "":
		return actual, nil
	case domain.PartitionOwedToUs, domain.PartitionWeOwe:
		if current != 0 && p != actual {
			return "", fmt.Errorf("%w: balance of %d is %s, not %s", domain.ErrValidation, current, partitionLabel(actual), partitionLabel(p))
		}
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown partition %q", domain.ErrValidation, p)
}

// displayed is the positive count a partition shows for a signed balance.
func displayed(balance int, p domain.Partition) int {
	if p == domain.PartitionWeOwe {
		if balance < 0 {
			return -balance
		}
		return 0
	}
	if balance > 0 {
		return balance
	}
	return 0
}

func partitionLabel(p domain.Partition) string {
	if p == domain.PartitionWeOwe {
		return "we owe"
	}
	return "owed to us"
}

// UpdateStatusCount sets the stored count of one status. The total is derived and cannot be set.
func (l *BinLedger) UpdateStatusCount(ctx context.Context, s domain.Session, status, binTypeID string, value int) (*Result, error) {
	st, err := domain.ParseBinStatus(status)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, fmt.Errorf("%w: count cannot be negative", domain.ErrValidation)
	}
	bt, err := l.binType(ctx, s, binTypeID)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Set %s count of %s to %d", st, bt.Name, value)
	sc := domain.BinStatusCount{TeamID: s.TeamID, BinTypeID: bt.ID, Status: st, Count: value}
	entry := l.entry(s, domain.HistoryEdit, description, domain.HistoryDetails{Bin: bt.Name, Status: st, NewValue: domain.IntPtr(value)})
	if err := l.store.UpsertStatusCount(ctx, sc, entry); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

func (l *BinLedger) binType(ctx context.Context, s domain.Session, id string) (domain.BinType, error) {
	types, err := l.store.ListBinTypes(ctx, s.TeamID)
	if err != nil {
		return domain.BinType{}, err
	}
	for _, t := range types {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.BinType{}, fmt.Errorf("bin type %s: %w", id, domain.ErrNotFound)
}

// AddParty creates a party with no balances.
func (l *BinLedger) AddParty(ctx context.Context, s domain.Session, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: party name is required", domain.ErrValidation)
	}
	parties, err := l.store.ListParties(ctx, s.TeamID)
	if err != nil {
		return nil, err
	}
	if _, ok := domain.FindParty(parties, name); ok {
		return nil, fmt.Errorf("%w: party %q already exists", domain.ErrValidation, name)
	}

	party := &domain.BinParty{TeamID: s.TeamID, Name: name}
	if err := l.store.CreateParty(ctx, party, l.entry(s, domain.HistoryParty, "Added party "+name, domain.HistoryDetails{Party: name})); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, "Added party "+name)
}

// PrepareRemoveParty asks for confirmation before a party and its balances are deleted.
func (l *BinLedger) PrepareRemoveParty(ctx context.Context, s domain.Session, partyID string) (*Result, error) {
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	party, ok := partyByID(agg, partyID)
	if !ok {
		return nil, fmt.Errorf("party %s: %w", partyID, domain.ErrNotFound)
	}

	message := fmt.Sprintf("Remove %s and all of its bin balances? This cannot be undone.", party.Name)
	confirmation, err := l.pending.Create(ctx, s, PendingAction{Kind: domain.ConfirmRemoveParty, PartyID: party.ID},
		message, party.Name, "")
	if err != nil {
		return nil, err
	}

	result := binResult(message, agg)
	result.Confirmation = confirmation
	return result, nil
}

// CommitRemoveParty deletes the party; the history entry keeps the balances that were dropped.
func (l *BinLedger) CommitRemoveParty(ctx context.Context, s domain.Session, partyID string) (*Result, error) {
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	party, ok := partyByID(agg, partyID)
	if !ok {
		return nil, fmt.Errorf("party %s: %w", partyID, domain.ErrNotFound)
	}

	removed := make(map[string]int)
	for binID, balance := range party.Balances {
		if balance == 0 {
			continue
		}
		name := binID
		if bt, ok := agg.BinTypeByID(binID); ok {
			name = bt.Name
		}
		removed[name] = balance
	}

	description := "Removed party " + party.Name
	entry := l.entry(s, domain.HistoryParty, description, domain.HistoryDetails{Party: party.Name, Balances: removed})
	if err := l.store.DeleteParty(ctx, s.TeamID, party.ID, entry); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

func partyByID(agg *domain.BinAggregate, id string) (domain.BinParty, bool) {
	for _, p := range agg.Parties {
		if p.ID == id {
			return p, true
		}
	}
	return domain.BinParty{}, false
}

// AddBinType registers a new bin type.
func (l *BinLedger) AddBinType(ctx context.Context, s domain.Session, in BinTypeInput) (*Result, error) {
	bt := &domain.BinType{
		TeamID:        s.TeamID,
		Name:          strings.TrimSpace(in.Name),
		Color:         strings.TrimSpace(in.Color),
		Category:      in.Category,
		SubCategory:   in.SubCategory,
		OwnedQuantity: in.OwnedQuantity,
	}
	if bt.Category == "" {
		bt.Category = domain.BinCategoryStandard
	}
	if err := bt.Validate(); err != nil {
		return nil, err
	}

	description := "Added bin type " + bt.Name
	if err := l.store.CreateBinType(ctx, bt, l.entry(s, domain.HistoryConfig, description, domain.HistoryDetails{Bin: bt.Name})); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// SeedDefaultBinTypes creates the given standard types unless they already exist.
func (l *BinLedger) SeedDefaultBinTypes(ctx context.Context, s domain.Session, names []string) (int, error) {
	existing, err := l.store.ListBinTypes(ctx, s.TeamID)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := domain.FindBinType(existing, name); ok {
			continue
		}
		bt := &domain.BinType{TeamID: s.TeamID, Name: name, Category: domain.BinCategoryStandard, IsDefault: true}
		entry := l.entry(s, domain.HistoryConfig, "Added bin type "+name, domain.HistoryDetails{Bin: name})
		if err := l.store.CreateBinType(ctx, bt, entry); err != nil {
			return created, err
		}
		existing = append(existing, *bt)
		created++
	}
	return created, nil
}

// RemoveBinType is allowed with outstanding balances; they are recorded in the history entry.
func (l *BinLedger) RemoveBinType(ctx context.Context, s domain.Session, binTypeID string) (*Result, error) {
	agg, err := l.Aggregate(ctx, s, time.Time{})
	if err != nil {
		return nil, err
	}
	bt, ok := agg.BinTypeByID(binTypeID)
	if !ok {
		return nil, fmt.Errorf("bin type %s: %w", binTypeID, domain.ErrNotFound)
	}

	outstanding := make(map[string]int)
	for _, p := range agg.Parties {
		if b := p.Balances[bt.ID]; b != 0 {
			outstanding[p.Name] = b
		}
	}
	sum := agg.BalanceSum(bt.ID)

	description := "Removed bin type " + bt.Name
	if len(outstanding) > 0 {
		description = fmt.Sprintf("%s with outstanding balance %d", description, sum)
	}
	details := domain.HistoryDetails{Bin: bt.Name, OldValue: domain.IntPtr(sum), Balances: outstanding}
	if err := l.store.DeleteBinType(ctx, s.TeamID, bt.ID, l.entry(s, domain.HistoryConfig, description, details)); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// UpdateBinTypeColor changes the display color.
func (l *BinLedger) UpdateBinTypeColor(ctx context.Context, s domain.Session, binTypeID, color string) (*Result, error) {
	bt, err := l.binType(ctx, s, binTypeID)
	if err != nil {
		return nil, err
	}
	bt.Color = strings.TrimSpace(color)

	description := fmt.Sprintf("Changed color of %s to %s", bt.Name, bt.Color)
	if err := l.store.UpdateBinType(ctx, &bt, l.entry(s, domain.HistoryConfig, description, domain.HistoryDetails{Bin: bt.Name})); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// UpdateOwnedQuantity sets how many bins of the type the company owns.
func (l *BinLedger) UpdateOwnedQuantity(ctx context.Context, s domain.Session, binTypeID string, quantity int) (*Result, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: owned quantity cannot be negative", domain.ErrValidation)
	}
	bt, err := l.binType(ctx, s, binTypeID)
	if err != nil {
		return nil, err
	}
	old := bt.OwnedQuantity
	bt.OwnedQuantity = quantity

	description := fmt.Sprintf("Set owned %s to %d", bt.Name, quantity)
	details := domain.HistoryDetails{Bin: bt.Name, OldValue: domain.IntPtr(old), NewValue: domain.IntPtr(quantity)}
	if err := l.store.UpdateBinType(ctx, &bt, l.entry(s, domain.HistoryConfig, description, details)); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// AddCustomBinType adds a leaf type under one of the mixed parents.
func (l *BinLedger) AddCustomBinType(ctx context.Context, s domain.Session, name string, parent domain.MixedSubCategory) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: custom bin type name is required", domain.ErrValidation)
	}
	if !parent.Valid() {
		return nil, fmt.Errorf("%w: parent must be %s or %s", domain.ErrValidation, domain.MixedWood, domain.MixedPlastic)
	}

	ct := &domain.CustomBinType{TeamID: s.TeamID, Name: name, Parent: parent}
	description := fmt.Sprintf("Added custom bin type %s under %s", name, parent)
	if err := l.store.CreateCustomBinType(ctx, ct, l.entry(s, domain.HistoryConfig, description, domain.HistoryDetails{Bin: name})); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

func (l *BinLedger) customType(ctx context.Context, s domain.Session, id string) (domain.CustomBinType, error) {
	types, err := l.store.ListCustomBinTypes(ctx, s.TeamID)
	if err != nil {
		return domain.CustomBinType{}, err
	}
	for _, t := range types {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.CustomBinType{}, fmt.Errorf("custom bin type %s: %w", id, domain.ErrNotFound)
}

func (l *BinLedger) RemoveCustomBinType(ctx context.Context, s domain.Session, id string) (*Result, error) {
	ct, err := l.customType(ctx, s, id)
	if err != nil {
		return nil, err
	}
	description := "Removed custom bin type " + ct.Name
	details := domain.HistoryDetails{Bin: ct.Name, OldValue: domain.IntPtr(ct.Count)}
	if err := l.store.DeleteCustomBinType(ctx, s.TeamID, ct.ID, l.entry(s, domain.HistoryConfig, description, details)); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// UpdateCustomCount sets the count of a custom type, which rolls up into its mixed parent.
func (l *BinLedger) UpdateCustomCount(ctx context.Context, s domain.Session, id string, count int) (*Result, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count cannot be negative", domain.ErrValidation)
	}
	ct, err := l.customType(ctx, s, id)
	if err != nil {
		return nil, err
	}
	old := ct.Count
	ct.Count = count

	description := fmt.Sprintf("Set %s count to %d", ct.Name, count)
	details := domain.HistoryDetails{Bin: ct.Name, OldValue: domain.IntPtr(old), NewValue: domain.IntPtr(count)}
	if err := l.store.UpdateCustomBinType(ctx, &ct, l.entry(s, domain.HistoryEdit, description, details)); err != nil {
		return nil, err
	}
	return l.reload(ctx, s, description)
}

// Rollover stores the now total of the previous day as the opening total of date.
// Running it again for the same date overwrites the earlier result.
func (l *BinLedger) Rollover(ctx context.Context, s domain.Session, date time.Time) (*Result, error) {
	if date.IsZero() {
		date = l.now()
	}
	date = domain.Day(date)
	prev := date.AddDate(0, 0, -1)

	agg, err := l.Aggregate(ctx, s, prev)
	if err != nil {
		return nil, err
	}

	totals := make([]domain.DailyBinTotal, 0, len(agg.Types))
	carried := make(map[string]int, len(agg.Types))
	for _, bt := range agg.Types {
		now := agg.NowTotal(bt)
		totals = append(totals, domain.DailyBinTotal{TeamID: s.TeamID, BinTypeID: bt.ID, Date: date, OpeningTotal: now})
		carried[bt.Name] = now
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].BinTypeID < totals[j].BinTypeID })

	record := &domain.RolloverRecord{TeamID: s.TeamID, FromDate: prev, ToDate: date, PerformedBy: s.Actor()}
	description := fmt.Sprintf("Rolled bin totals from %s to %s", prev.Format(domain.DateLayout), date.Format(domain.DateLayout))
	details := domain.HistoryDetails{
		Balances: carried,
		FromDate: prev.Format(domain.DateLayout),
		ToDate:   date.Format(domain.DateLayout),
	}
	if err := l.store.SaveRollover(ctx, totals, record, l.entry(s, domain.HistoryConfig, description, details)); err != nil {
		return nil, err
	}

	next, err := l.Aggregate(ctx, s, date)
	if err != nil {
		return nil, err
	}
	return binResult(description, next), nil
}

// History returns the most recent audit entries, newest first.
func (l *BinLedger) History(ctx context.Context, s domain.Session) ([]domain.HistoryEntry, error) {
	return l.store.ListHistory(ctx, s.TeamID, l.historyLimit)
}

// SaveNote schedules a debounced write of the team note.
func (l *BinLedger) SaveNote(s domain.Session, text string) {
	l.notes.Schedule(s.TeamID, s.Actor(), text)
}

// FlushNotes writes pending notes immediately.
func (l *BinLedger) FlushNotes(ctx context.Context) error {
	return l.notes.Flush(ctx)
}
