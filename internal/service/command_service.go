package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/interpreter"
	"github.com/rs/zerolog/log"
)

// CommandStore is what the command service reads to build interpreter snapshots.
type CommandStore interface {
	ListStockItems(ctx context.Context, teamID string) ([]domain.StockItem, error)
	ListSuppliers(ctx context.Context, teamID string) ([]domain.Supplier, error)
	ListBinTypes(ctx context.Context, teamID string) ([]domain.BinType, error)
}

// CommandService runs free-text commands through the same mutations the API exposes
type CommandService struct {
	store       CommandStore
	interpreter *interpreter.Interpreter
	stock       *StockService
	ledger      *BinLedger
	now         func() time.Time
}

func NewCommandService(store CommandStore, interp *interpreter.Interpreter, stock *StockService, ledger *BinLedger) *CommandService {
	return &CommandService{
		store:       store,
		interpreter: interp,
		stock:       stock,
		ledger:      ledger,
		now:         time.Now,
	}
}

// RunStockCommand answers report phrases locally and sends everything else to the model.
func (c *CommandService) RunStockCommand(ctx context.Context, s domain.Session, text string) (*Result, error) {
	cmd, err := c.classify(ctx, s, text)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, s, cmd)
}

func (c *CommandService) classify(ctx context.Context, s domain.Session, text string) (domain.Command, error) {
	if r, ok := interpreter.ParseDateRange(text, c.now()); ok {
		return domain.ReportCommand{Range: r}, nil
	}

	items, err := c.store.ListStockItems(ctx, s.TeamID)
	if err != nil {
		return nil, err
	}
	suppliers, err := c.store.ListSuppliers(ctx, s.TeamID)
	if err != nil {
		return nil, err
	}
	return c.interpreter.Interpret(ctx, text, interpreter.Snapshot{Items: items, Suppliers: suppliers})
}

// RunBinCommand parses a movement with the fixed bin grammar; the model is not involved.
func (c *CommandService) RunBinCommand(ctx context.Context, s domain.Session, text string) (*Result, error) {
	types, err := c.store.ListBinTypes(ctx, s.TeamID)
	if err != nil {
		return nil, err
	}
	movement, err := interpreter.ParseBinCommand(text, types)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, s, domain.MovementCommand{Movement: movement})
}

func (c *CommandService) dispatch(ctx context.Context, s domain.Session, cmd domain.Command) (*Result, error) {
	log.Debug().Str("team_id", s.TeamID).Str("kind", string(cmd.Kind())).Msg("command: dispatching")

	var (
		res *Result
		err error
	)
	switch v := cmd.(type) {
	case domain.ReportCommand:
		report, rerr := c.stock.Report(ctx, s, v.Range)
		if rerr != nil {
			return nil, rerr
		}
		res = &Result{Message: "Report for " + v.Range.String(), Report: report}

	case domain.AddCommand:
		res, err = c.stock.AddStock(ctx, s, AddStockInput{
			Name:     v.Name,
			Quantity: v.Quantity,
			Price:    v.Price,
			Category: v.Category,
			Credit:   v.Credit,
			Supplier: v.Supplier,
		})

	case domain.UpdateCommand:
		res, err = c.stock.UpdateStock(ctx, s, UpdateStockInput{Name: v.Name, Field: string(v.Field), Value: v.Value})

	case domain.QueryCommand:
		res = &Result{Message: v.Answer}

	case domain.MovementCommand:
		res, err = c.ledger.RecordMovement(ctx, s, v.Movement)

	case domain.UnknownCommand:
		message := "Sorry, I could not work out what to do with that command."
		if v.Reasoning != "" {
			message = fmt.Sprintf("%s %s", message, v.Reasoning)
		}
		res = &Result{Message: message}

	default:
		return nil, fmt.Errorf("%w: unsupported command %s", domain.ErrValidation, cmd.Kind())
	}
	if err != nil {
		return nil, err
	}

	res.Kind = cmd.Kind()
	return res, nil
}
