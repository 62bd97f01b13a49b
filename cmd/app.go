package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pointage/config"
	"pointage/internal/logging"
	"pointage/internal/timeutil"
	"pointage/roster"
	"pointage/storage"
)

// app bundles what data commands need after loading the configuration.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *storage.SQLiteStore
	service *roster.Service
}

func openApp(dbFlag string) (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	dbPath := resolveDBPath(dbFlag, cfg)
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("db", dbPath).Msg("database opened")

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		service: roster.NewService(store, logger),
	}, nil
}

func (r *app) Close() error {
	return r.store.Close()
}

func resolveDBPath(flag string, cfg *config.Config) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return cfg.Storage.DBPath
}

// periodFlags are the date range selectors shared by stats, export and workers.
type periodFlags struct {
	day    string
	from   string
	to     string
	year   int
	month  int
	period string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.day, "day", "", "Single day, format YYYY-MM-DD")
	cmd.Flags().StringVar(&p.from, "from", "", "Range start, format YYYY-MM-DD (requires --to)")
	cmd.Flags().StringVar(&p.to, "to", "", "Range end, format YYYY-MM-DD (requires --from)")
	cmd.Flags().IntVar(&p.year, "year", 0, "Year of a half-month period (requires --month)")
	cmd.Flags().IntVar(&p.month, "month", 0, "Month 1-12 of a half-month period (requires --year)")
	cmd.Flags().StringVar(&p.period, "period", timeutil.PeriodAll, "Half-month period: QZ1 (1-15), QZ2 (16-end) or all")
}

func (p periodFlags) resolve() (timeutil.Range, error) {
	period, err := timeutil.Selector{
		Day:    p.day,
		From:   p.from,
		To:     p.to,
		Year:   p.year,
		Month:  p.month,
		Period: p.period,
	}.Resolve()
	if err != nil {
		return timeutil.Range{}, fmt.Errorf("invalid period: %w", err)
	}
	return period, nil
}

func describeRange(period timeutil.Range) string {
	switch {
	case period.IsZero():
		return "all dates"
	case period.From == period.To:
		return period.From
	default:
		return period.From + " to " + period.To
	}
}
