// Package memory is an in-process Store used by tests and the memory store driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/google/uuid"
)

type balanceKey struct {
	partyID   string
	binTypeID string
}

type statusKey struct {
	binTypeID string
	status    domain.BinStatus
}

type totalKey struct {
	binTypeID string
	date      string
}

// Store keeps every table in maps guarded by one mutex, so each call is atomic.
type Store struct {
	mu sync.RWMutex

	teams       map[string]domain.Team
	memberships map[string]domain.TeamMembership

	items     map[string]domain.StockItem
	activity  []domain.ActivityEntry
	suppliers map[string]domain.Supplier
	credit    []domain.CreditTransaction

	binTypes     map[string]domain.BinType
	customTypes  map[string]domain.CustomBinType
	parties      map[string]domain.BinParty
	balances     map[balanceKey]domain.BinBalance
	statusCounts map[statusKey]domain.BinStatusCount
	totals       map[totalKey]domain.DailyBinTotal
	rollovers    []domain.RolloverRecord
	history      []domain.HistoryEntry

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		teams:        make(map[string]domain.Team),
		memberships:  make(map[string]domain.TeamMembership),
		items:        make(map[string]domain.StockItem),
		suppliers:    make(map[string]domain.Supplier),
		binTypes:     make(map[string]domain.BinType),
		customTypes:  make(map[string]domain.CustomBinType),
		parties:      make(map[string]domain.BinParty),
		balances:     make(map[balanceKey]domain.BinBalance),
		statusCounts: make(map[statusKey]domain.BinStatusCount),
		totals:       make(map[totalKey]domain.DailyBinTotal),
		now:          time.Now,
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

// Rollovers returns the rollover log, newest last.
func (s *Store) Rollovers() []domain.RolloverRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RolloverRecord(nil), s.rollovers...)
}

func (s *Store) appendHistory(entry *domain.HistoryEntry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.history = append(s.history, *entry)
}

// --- teams

func (s *Store) GetMembership(ctx context.Context, userID string) (*domain.TeamMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (s *Store) CreateTeam(ctx context.Context, team *domain.Team, owner string) (*domain.TeamMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[owner]; ok {
		return nil, fmt.Errorf("%w: user already belongs to a team", domain.ErrValidation)
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	team.CreatedAt = s.now()
	s.teams[team.ID] = *team
	m := domain.TeamMembership{TeamID: team.ID, TeamName: team.Name, UserID: owner, Role: "owner"}
	s.memberships[owner] = m
	return &m, nil
}

// --- stock

func (s *Store) ListStockItems(ctx context.Context, teamID string) ([]domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StockItem, 0)
	for _, it := range s.items {
		if it.TeamID == teamID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) GetStockItemByName(ctx context.Context, teamID, name string) (*domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.TeamID == teamID && strings.EqualFold(it.Name, strings.TrimSpace(name)) {
			found := it
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) putItem(item *domain.StockItem) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = s.now()
	s.items[item.ID] = *item
}

func (s *Store) putActivity(entry *domain.ActivityEntry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.activity = append(s.activity, *entry)
}

func (s *Store) UpsertStockItem(ctx context.Context, item *domain.StockItem, activity *domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putItem(item)
	s.putActivity(activity)
	return nil
}

func (s *Store) UpsertStockItems(ctx context.Context, items []domain.StockItem, activity *domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		s.putItem(&items[i])
	}
	s.putActivity(activity)
	return nil
}

func (s *Store) ListActivity(ctx context.Context, teamID string, from, to time.Time, limit int) ([]domain.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ActivityEntry, 0)
	for i := len(s.activity) - 1; i >= 0; i-- {
		a := s.activity[i]
		if a.TeamID != teamID || a.CreatedAt.Before(from) || !a.CreatedAt.Before(to) {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- suppliers

func (s *Store) ListSuppliers(ctx context.Context, teamID string) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Supplier, 0)
	for _, sup := range s.suppliers {
		if sup.TeamID == teamID {
			out = append(out, sup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) RecordCreditPurchase(ctx context.Context, tx *domain.CreditTransaction) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var supplier *domain.Supplier
	for id, sup := range s.suppliers {
		if sup.TeamID == tx.TeamID && strings.EqualFold(sup.Name, tx.SupplierName) {
			found := s.suppliers[id]
			supplier = &found
			break
		}
	}
	if supplier == nil {
		supplier = &domain.Supplier{ID: uuid.NewString(), TeamID: tx.TeamID, Name: tx.SupplierName, CreatedAt: s.now()}
	}
	supplier.Balance = supplier.Balance.Add(tx.Total)
	s.suppliers[supplier.ID] = *supplier

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.SupplierID = supplier.ID
	tx.SupplierName = supplier.Name
	tx.CreatedAt = s.now()
	s.credit = append(s.credit, *tx)
	return supplier, nil
}

func (s *Store) ListCreditTransactions(ctx context.Context, teamID string, from, to time.Time) ([]domain.CreditTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CreditTransaction, 0)
	for _, c := range s.credit {
		if c.TeamID == teamID && !c.CreatedAt.Before(from) && c.CreatedAt.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- bins

func (s *Store) ListBinTypes(ctx context.Context, teamID string) ([]domain.BinType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BinType, 0)
	for _, bt := range s.binTypes {
		if bt.TeamID == teamID {
			out = append(out, bt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListCustomBinTypes(ctx context.Context, teamID string) ([]domain.CustomBinType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CustomBinType, 0)
	for _, ct := range s.customTypes {
		if ct.TeamID == teamID {
			out = append(out, ct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListParties(ctx context.Context, teamID string) ([]domain.BinParty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BinParty, 0)
	for _, p := range s.parties {
		if p.TeamID != teamID {
			continue
		}
		p.Balances = make(map[string]int)
		for k, b := range s.balances {
			if k.partyID == p.ID {
				p.Balances[k.binTypeID] = b.Balance
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) ListBalances(ctx context.Context, teamID string) ([]domain.BinBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BinBalance, 0)
	for _, b := range s.balances {
		if b.TeamID == teamID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) ListStatusCounts(ctx context.Context, teamID string) ([]domain.BinStatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BinStatusCount, 0)
	for _, sc := range s.statusCounts {
		if sc.TeamID == teamID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *Store) GetOpeningTotals(ctx context.Context, teamID string, date time.Time) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := date.Format(domain.DateLayout)
	out := make(map[string]int)
	for k, t := range s.totals {
		if t.TeamID == teamID && k.date == day {
			out[k.binTypeID] = t.OpeningTotal
		}
	}
	return out, nil
}

func (s *Store) GetBalance(ctx context.Context, teamID, partyID, binTypeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[balanceKey{partyID, binTypeID}]
	if !ok || b.TeamID != teamID {
		return 0, nil
	}
	return b.Balance, nil
}

func (s *Store) SaveBalance(ctx context.Context, balance domain.BinBalance, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parties[balance.PartyID]; !ok {
		return fmt.Errorf("party %s: %w", balance.PartyID, domain.ErrNotFound)
	}
	if _, ok := s.binTypes[balance.BinTypeID]; !ok {
		return fmt.Errorf("bin type %s: %w", balance.BinTypeID, domain.ErrNotFound)
	}
	s.balances[balanceKey{balance.PartyID, balance.BinTypeID}] = balance
	s.appendHistory(entry)
	return nil
}

func (s *Store) CreateParty(ctx context.Context, party *domain.BinParty, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if party.ID == "" {
		party.ID = uuid.NewString()
	}
	party.CreatedAt = s.now()
	stored := *party
	stored.Balances = nil
	s.parties[party.ID] = stored
	s.appendHistory(entry)
	return nil
}

func (s *Store) DeleteParty(ctx context.Context, teamID, partyID string, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[partyID]
	if !ok || p.TeamID != teamID {
		return domain.ErrNotFound
	}
	delete(s.parties, partyID)
	for k := range s.balances {
		if k.partyID == partyID {
			delete(s.balances, k)
		}
	}
	s.appendHistory(entry)
	return nil
}

func (s *Store) CreateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.binTypes {
		if existing.TeamID == bt.TeamID && strings.EqualFold(existing.Name, bt.Name) {
			return fmt.Errorf("%w: bin type %q already exists", domain.ErrValidation, bt.Name)
		}
	}
	if bt.ID == "" {
		bt.ID = uuid.NewString()
	}
	bt.CreatedAt = s.now()
	s.binTypes[bt.ID] = *bt
	s.appendHistory(entry)
	return nil
}

func (s *Store) UpdateBinType(ctx context.Context, bt *domain.BinType, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.binTypes[bt.ID]
	if !ok || existing.TeamID != bt.TeamID {
		return domain.ErrNotFound
	}
	s.binTypes[bt.ID] = *bt
	s.appendHistory(entry)
	return nil
}

func (s *Store) DeleteBinType(ctx context.Context, teamID, binTypeID string, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.binTypes[binTypeID]
	if !ok || existing.TeamID != teamID {
		return domain.ErrNotFound
	}
	delete(s.binTypes, binTypeID)
	for k := range s.balances {
		if k.binTypeID == binTypeID {
			delete(s.balances, k)
		}
	}
	for k := range s.statusCounts {
		if k.binTypeID == binTypeID {
			delete(s.statusCounts, k)
		}
	}
	for k := range s.totals {
		if k.binTypeID == binTypeID {
			delete(s.totals, k)
		}
	}
	s.appendHistory(entry)
	return nil
}

func (s *Store) CreateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ct.ID == "" {
		ct.ID = uuid.NewString()
	}
	ct.CreatedAt = s.now()
	s.customTypes[ct.ID] = *ct
	s.appendHistory(entry)
	return nil
}

func (s *Store) UpdateCustomBinType(ctx context.Context, ct *domain.CustomBinType, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customTypes[ct.ID]
	if !ok || existing.TeamID != ct.TeamID {
		return domain.ErrNotFound
	}
	s.customTypes[ct.ID] = *ct
	s.appendHistory(entry)
	return nil
}

func (s *Store) DeleteCustomBinType(ctx context.Context, teamID, id string, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customTypes[id]
	if !ok || existing.TeamID != teamID {
		return domain.ErrNotFound
	}
	delete(s.customTypes, id)
	s.appendHistory(entry)
	return nil
}

func (s *Store) UpsertStatusCount(ctx context.Context, sc domain.BinStatusCount, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.binTypes[sc.BinTypeID]; !ok {
		return fmt.Errorf("bin type %s: %w", sc.BinTypeID, domain.ErrNotFound)
	}
	s.statusCounts[statusKey{sc.BinTypeID, sc.Status}] = sc
	s.appendHistory(entry)
	return nil
}

func (s *Store) SaveRollover(ctx context.Context, totals []domain.DailyBinTotal, record *domain.RolloverRecord, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range totals {
		s.totals[totalKey{t.BinTypeID, t.Date.Format(domain.DateLayout)}] = t
	}
	if record != nil {
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		record.CreatedAt = s.now()
		s.rollovers = append(s.rollovers, *record)
	}
	s.appendHistory(entry)
	return nil
}

// --- history

func (s *Store) ListHistory(ctx context.Context, teamID string, limit int) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HistoryEntry, 0)
	for i := len(s.history) - 1; i >= 0; i-- {
		h := s.history[i]
		if h.TeamID != teamID || h.Type == domain.HistoryNote {
			continue
		}
		out = append(out, h)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UpsertNote(ctx context.Context, teamID, text, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.history {
		if h.TeamID == teamID && h.Type == domain.HistoryNote {
			s.history[i].Description = text
			s.history[i].CreatedBy = author
			s.history[i].CreatedAt = s.now()
			return nil
		}
	}
	s.appendHistory(&domain.HistoryEntry{TeamID: teamID, Type: domain.HistoryNote, Description: text, CreatedBy: author})
	return nil
}

func (s *Store) GetNote(ctx context.Context, teamID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.history {
		if h.TeamID == teamID && h.Type == domain.HistoryNote {
			return h.Description, nil
		}
	}
	return "", nil
}

// NoteCount reports how many note entries exist for a team.
func (s *Store) NoteCount(teamID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.history {
		if h.TeamID == teamID && h.Type == domain.HistoryNote {
			n++
		}
	}
	return n
}
