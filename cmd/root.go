// Package cmd holds the command line entry points.
package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"pasajes-cli/config"
	"pasajes-cli/fare"
	"pasajes-cli/logger"
	"pasajes-cli/model"
	"pasajes-cli/seatmap"
	"pasajes-cli/service"
	"pasajes-cli/store"
	"pasajes-cli/tui"
)

const appName = "pasajes"

type bookingFlags struct {
	busID         string
	routeID       string
	worksheetID   string
	fallbackPrice string
	floor         int
	strictFares   bool
}

// env is what every command needs once configuration has been read.
type env struct {
	cfg    config.Config
	log    *logger.Logger
	client *service.Client
}

func (f bookingFlags) context() (model.BookingContext, error) {
	ctx := model.BookingContext{
		BusID:         strings.TrimSpace(f.busID),
		RouteID:       strings.TrimSpace(f.routeID),
		WorksheetID:   strings.TrimSpace(f.worksheetID),
		FallbackPrice: decimal.Zero,
	}
	if s := strings.TrimSpace(f.fallbackPrice); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			return ctx, fmt.Errorf("invalid --fallback-price %q: %w", s, err)
		}
		if price.IsNegative() {
			return ctx, errors.New("--fallback-price must not be negative")
		}
		ctx.FallbackPrice = price
	}
	return ctx, nil
}

func (f bookingFlags) engine(ctx model.BookingContext, cfg config.Config, log *logger.Logger) *seatmap.Engine {
	engine := seatmap.NewEngine(ctx, seatmap.Options{
		Resolver:       fare.Resolver{Strict: f.strictFares},
		NoticeDuration: cfg.Screen.NoticeDuration,
		Logger:         log,
	})
	if f.floor > 0 {
		engine.SetFloor(f.floor)
	}
	return engine
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	tokens, err := tokenProvider(cfg)
	if err != nil {
		return nil, err
	}
	client := service.NewClient(&http.Client{Timeout: cfg.API.Timeout}, cfg.API.BaseURL, tokens)
	client.SetRetryPolicy(cfg.API.MaxAttempts, cfg.API.RetryBase, cfg.API.RetryCap)
	return &env{cfg: cfg, log: log, client: client}, nil
}

// tokenProvider prefers a token from the environment over the stored session.
func tokenProvider(cfg config.Config) (service.TokenProvider, error) {
	if cfg.API.Token != "" {
		return service.StaticToken(cfg.API.Token), nil
	}
	sessions, err := store.NewSessionStore()
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func newRootCmd(version string, commit string) *cobra.Command {
	var flags bookingFlags

	root := &cobra.Command{
		Use:           appName,
		Short:         "Pick bus seats from the terminal",
		Long:          `Shows the live seat map of a bus, prices every seat with the route fares and hands the selection to payment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.log.Close()

			if strings.TrimSpace(flags.busID) == "" {
				recent, err := promptBus()
				if err != nil {
					return err
				}
				flags.busID = recent.BusID
				if flags.routeID == "" {
					flags.routeID = recent.RouteID
				}
				if flags.worksheetID == "" {
					flags.worksheetID = recent.WorksheetID
				}
			}
			ctx, err := flags.context()
			if err != nil {
				return err
			}
			_ = store.RememberBus(store.RecentBus{BusID: ctx.BusID, RouteID: ctx.RouteID, WorksheetID: ctx.WorksheetID})

			log := e.log.WithBus(ctx.BusID)
			screen := tui.New(tui.Options{
				Engine:            flags.engine(ctx, e.cfg, log),
				Loader:            seatmap.NewLoader(e.client, e.client, log),
				Logger:            log,
				FocusRefreshDelay: e.cfg.Screen.FocusRefreshDelay,
				PollInterval:      e.cfg.Screen.PollInterval,
				SaveHandoff:       store.SaveHandoff,
			})
			_, err = tea.NewProgram(screen, tea.WithAltScreen(), tea.WithReportFocus()).Run()
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.busID, "bus", "", "bus id whose seats to show")
	pf.StringVar(&flags.routeID, "route", "", "route id used to price seats")
	pf.StringVar(&flags.worksheetID, "worksheet", "", "worksheet id carried to payment")
	pf.StringVar(&flags.fallbackPrice, "fallback-price", "", "price used when the route has no fares")
	pf.IntVar(&flags.floor, "floor", 0, "floor to show first (1 lower, 2 upper)")
	pf.BoolVar(&flags.strictFares, "strict-fares", false, "never price a seat with a fare of another seat type")

	root.AddCommand(newSeatsCmd(&flags), newLoginCmd(), newLogoutCmd(), newVersionCmd(version, commit))
	return root
}

// Execute runs the root command.
func Execute(version string, commit string) error {
	return newRootCmd(version, commit).Execute()
}
