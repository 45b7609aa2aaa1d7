package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go-pos-ledger/internal/ai"
	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/database"
	"go-pos-ledger/internal/handlers"
	"go-pos-ledger/internal/jobs"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/report"
	"go-pos-ledger/internal/settings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:   "pos-ledger",
		Usage:  "point-of-sale and bookkeeping server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "sync the database schema and seed default settings",
				Action: migrate,
			},
			{
				Name:  "report",
				Usage: "print a report for a date range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Value: string(report.Sales), Usage: "sales, expenses, profit-loss, inventory, customers or tax"},
					&cli.StringFlag{Name: "start", Required: true, Usage: "first day, YYYY-MM-DD"},
					&cli.StringFlag{Name: "end", Required: true, Usage: "last day, YYYY-MM-DD"},
					&cli.StringFlag{Name: "xlsx", Usage: "write the report to this Excel file instead of printing it"},
				},
				Action: printReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pos-ledger failed")
	}
}

type env struct {
	cfg   config.Config
	loc   *time.Location
	store *database.Store
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ConfigureLogger(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := database.Connect(cfg.DBDriver, cfg.DBDSN, cfg.DBDebug)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, loc: loc, store: store}, nil
}

func migrate(c *cli.Context) error {
	_, err := setup(c.Context)
	return err
}

func printReport(c *cli.Context) error {
	e, err := setup(c.Context)
	if err != nil {
		return err
	}

	kind, err := report.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	rng, err := report.ParseRange(c.String("start"), c.String("end"), e.loc)
	if err != nil {
		return err
	}
	r, err := report.Load(c.Context, e.store, kind, rng)
	if err != nil {
		return err
	}

	if path := c.String("xlsx"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create xlsx file")
		}
		defer f.Close()
		if err := report.WriteXLSX(f, r); err != nil {
			return err
		}
		log.WithField("file", path).Info("report written")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t\n", r.Title)
	fmt.Fprintf(w, "%s\tAmount\t\n", r.Header)
	for _, row := range r.Table() {
		fmt.Fprintf(w, "%s\t%s\t\n", row.Label, row.Text)
	}
	return w.Flush()
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	cfg := e.cfg

	rows, err := e.store.ListSettings(ctx)
	if err != nil {
		return err
	}
	current, err := settings.FromRows(rows)
	if err != nil {
		return err
	}
	provider := settings.NewProvider(current)

	m := metrics.New(prometheus.DefaultRegisterer)

	var assistant handlers.Assistant = ai.Unavailable{}
	if cfg.GeminiEnabled() {
		agent, err := ai.NewAgent(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, ai.NewToolbox(e.store, e.loc))
		if err != nil {
			return err
		}
		defer agent.Close()
		assistant = agent
	} else {
		log.Warn("GEMINI_API_KEY is empty, the assistant is disabled")
	}

	scheduler, err := jobs.Start(jobs.NewSweeper(e.store, provider, m), cfg.SweepInterval, e.loc)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	h := handlers.New(handlers.Deps{
		Store:     e.store,
		Settings:  provider,
		Issuer:    auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:   m,
		Assistant: assistant,
		Location:  e.loc,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.StandardLogger()), m.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", middleware.AllowIPs(cfg.MetricsAllow), gin.WrapH(promhttp.Handler()))
	h.Routes(r, cfg.AllowRegistration)

	// --- DEPLOYMENT: Serve React Frontend ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")
	// SPA catch-all: refreshing on "/dashboard" must still load index.html.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("url", cfg.BaseURL).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
