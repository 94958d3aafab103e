package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/repository/postgres"
	"github.com/andresuchdata/stockbin/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newTeamFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "team",
		Usage:    "Team id the command runs for",
		Required: true,
		EnvVars:  []string{"STOCKBIN_TEAM"},
	}
}

func newActorFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "actor",
		Usage: "Name written to audit records",
		Value: "stockbinctl",
	}
}

func initDB(c *cli.Context) error {
	cfg := config.Load()

	raw, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := raw.PingContext(c.Context); err != nil {
		raw.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db := postgres.Wrap(sqlx.NewDb(raw, "pgx"), cfg.Database.MaxConcurrentTx, postgres.PolicyFromConfig(&cfg.Database))
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	cfg := config.Load()
	logger.Setup("debug", cfg.Server.LogLevel)

	app := &cli.App{
		Name:  "stockbinctl",
		Usage: "Operate the stockbin data store",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "rollover",
				Usage: "Carry bin totals of the previous day into --date",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTeamFlag(),
					newActorFlag(),
					&cli.StringFlag{
						Name:  "date",
						Usage: "Day to roll over into (YYYY-MM-DD), defaults to today",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runRollover,
			},
			{
				Name:   "new-day",
				Usage:  "Move remaining stock into opening stock and reset the daily counters",
				Flags:  []cli.Flag{newDBURLFlag(), newTeamFlag(), newActorFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runNewDay,
			},
			{
				Name:  "seed-bin-types",
				Usage: "Create the default bin types for a team",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTeamFlag(),
					newActorFlag(),
					&cli.StringSliceFlag{
						Name:  "name",
						Usage: "Bin type name (repeatable), defaults to DEFAULT_BIN_TYPES",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeedBinTypes,
			},
			{
				Name:  "report",
				Usage: "Export the stock report of a date range as XLSX",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newTeamFlag(),
					&cli.StringFlag{Name: "from", Usage: "First day (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Last day (YYYY-MM-DD), defaults to --from"},
					&cli.StringFlag{
						Name:    "out-dir",
						Usage:   "Directory the workbook is written to",
						Value:   cfg.App.ReportDir,
						EnvVars: []string{"APP_REPORT_DIR"},
					},
					&cli.BoolFlag{Name: "archive", Usage: "Also upload the workbook to object storage"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runReport,
			},
			{
				Name:   "reports",
				Usage:  "List archived reports of a team",
				Flags:  []cli.Flag{newTeamFlag()},
				Action: runListReports,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stockbinctl failed")
	}
}
