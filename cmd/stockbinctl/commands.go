package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/report"
	"github.com/andresuchdata/stockbin/internal/repository/postgres"
	"github.com/andresuchdata/stockbin/internal/service"
	"github.com/andresuchdata/stockbin/internal/storage"
	"github.com/andresuchdata/stockbin/pkg/logger"
	"github.com/urfave/cli/v2"
)

func sessionFrom(c *cli.Context) domain.Session {
	return domain.Session{UserID: c.String("actor"), Email: c.String("actor"), TeamID: c.String("team")}
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return domain.Day(time.Now()), nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

func ledgerFrom(c *cli.Context) (*service.BinLedger, error) {
	db, err := dbFrom(c)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(db)
	return service.NewBinLedger(store, nil, service.NewNoteDebouncer(store, 0), config.Load().App.HistoryLimit), nil
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := db.Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Msg("Schema applied")
	return nil
}

func runRollover(c *cli.Context) error {
	date, err := parseDay(c.String("date"))
	if err != nil {
		return err
	}
	ledger, err := ledgerFrom(c)
	if err != nil {
		return err
	}
	res, err := ledger.Rollover(c.Context, sessionFrom(c), date)
	if err != nil {
		return err
	}
	logger.Log.Info().Str("team", c.String("team")).Str("date", date.Format(domain.DateLayout)).Msg(res.Message)
	return nil
}

func runNewDay(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	stock := service.NewStockService(postgres.NewStore(db), nil)
	res, err := stock.NewDay(c.Context, sessionFrom(c))
	if err != nil {
		return err
	}
	logger.Log.Info().Str("team", c.String("team")).Int("items", len(res.Items)).Msg(res.Message)
	return nil
}

func runSeedBinTypes(c *cli.Context) error {
	names := c.StringSlice("name")
	if len(names) == 0 {
		names = config.Load().App.DefaultBinTypeNames
	}
	ledger, err := ledgerFrom(c)
	if err != nil {
		return err
	}
	created, err := ledger.SeedDefaultBinTypes(c.Context, sessionFrom(c), names)
	if err != nil {
		return err
	}
	logger.Log.Info().Str("team", c.String("team")).Int("created", created).Msg("Bin types seeded")
	return nil
}

func runReport(c *cli.Context) error {
	from, err := parseDay(c.String("from"))
	if err != nil {
		return err
	}
	to := from
	if c.String("to") != "" {
		if to, err = parseDay(c.String("to")); err != nil {
			return err
		}
	}

	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	s := sessionFrom(c)
	rep, err := service.NewStockService(postgres.NewStore(db), nil).Report(c.Context, s, domain.DateRange{From: from, To: to})
	if err != nil {
		return err
	}

	data, err := report.XLSX(*rep)
	if err != nil {
		return err
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(outDir, report.Filename(*rep))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Log.Info().Str("path", path).Int("lines", len(rep.Lines)).Int("entries", rep.Entries).Msg("Report written")

	if !c.Bool("archive") {
		return nil
	}
	archiver, err := newArchiver(c)
	if err != nil {
		return err
	}
	key, err := archiver.Archive(c.Context, s.TeamID, *rep, data)
	if err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Msg("Report archived")
	return nil
}

func runListReports(c *cli.Context) error {
	archiver, err := newArchiver(c)
	if err != nil {
		return err
	}
	objects, err := archiver.List(c.Context, c.String("team"))
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d\t%s\n", obj.LastModified.Format(time.RFC3339), obj.Size, obj.Key)
	}
	return nil
}

func newArchiver(c *cli.Context) (*report.Archiver, error) {
	cfg := config.Load().Storage
	if !cfg.Enabled {
		return nil, fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
	}
	client, err := storage.NewMinioClient(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	return report.NewArchiver(client, cfg.Prefix), nil
}
