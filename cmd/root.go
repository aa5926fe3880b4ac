package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ratemyrecipe/internal/api"
	"ratemyrecipe/internal/auth"
	"ratemyrecipe/internal/collection"
	"ratemyrecipe/internal/config"
	"ratemyrecipe/internal/db"
	"ratemyrecipe/internal/logging"
	"ratemyrecipe/internal/model"
	"ratemyrecipe/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flags shared by every command.
var (
	configPath  string
	apiURL      string
	dbPath      string
	favorites   string
	metricsAddr string
	offline     bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "ratemyrecipe",
	Short: "Browse, filter and favorite recipes in the terminal",
	Long: `ratemyrecipe is a terminal client for the RateMyRecipe backend.

Without a subcommand it starts the interactive recipe browser. Use
'ratemyrecipe login' first to manage favorites and post ratings.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: ~/.ratemyrecipe/config.yaml)")
	pf.StringVar(&apiURL, "api", "", "backend base URL (default: "+api.DefaultBaseURL+")")
	pf.StringVar(&dbPath, "db", "", "SQLite database file (default: ~/.ratemyrecipe/ratemyrecipe.db)")
	pf.StringVar(&favorites, "favorites", "", "favorite backend: remote or local")
	pf.BoolVar(&offline, "offline", false, "browse the cached snapshot without calling the backend")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve client metrics on this address, e.g. :9100")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, listCmd, favoriteCmd, configCmd)
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the dependencies wired from configuration.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *sql.DB
	client  *api.Client
	metrics *api.Metrics
	store   *auth.Store
}

// loadConfig reads the effective configuration: defaults, the config file,
// the environment and finally the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	metrics := api.NewMetrics()
	client := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger),
		api.WithMetrics(metrics),
	)

	logger.Info("starting",
		zap.String("api", client.BaseURL()),
		zap.Bool("offline", cfg.Offline),
		zap.String("favorites", cfg.Favorites),
		zap.String("db", cfg.DBPath),
	)

	return &app{
		cfg:     cfg,
		log:     logger,
		db:      database,
		client:  client,
		metrics: metrics,
		store:   auth.NewStore(cfg.Dir, logger),
	}, nil
}

// applyFlags overrides config values with flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("favorites") {
		cfg.Favorites = favorites
	}
	if flags.Changed("offline") {
		cfg.Offline = offline
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// newView wires the collection view model to its ports. Offline mode reads
// the snapshot cache; local favorites live in the database under the local
// user name.
func (a *app) newView() *collection.View {
	var source collection.RecipeSource = a.client
	if a.cfg.Offline {
		source = db.RecipeCache{DB: a.db}
	}

	var store collection.FavoriteStore = a.client
	if a.cfg.LocalFavorites() {
		store = db.FavoriteStore{DB: a.db}
	}

	return collection.New(source, store, a.authContext(), collection.WithLogger(a.log))
}

func (a *app) authContext() collection.AuthContext {
	if a.cfg.LocalFavorites() {
		return auth.Local{User: a.cfg.LocalUser}
	}
	return a.store
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.MetricsAddr != "" {
		srv := startMetricsServer(a.cfg.MetricsAddr, a.metrics, a.log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	opts := ui.Options{
		View:     a.newView(),
		Auth:     a.authContext(),
		PrefsDir: a.cfg.Dir,
		Timeout:  a.cfg.RequestTimeout(),
		Logger:   a.log,
	}
	if !a.cfg.Offline {
		opts.Backend = a.client
		database := a.db
		opts.Cache = func(recipes []model.Recipe) error {
			return db.SaveRecipes(database, recipes)
		}
	} else if saved, ok, err := db.SnapshotTime(a.db); err != nil {
		a.log.Warn("failed to read snapshot time", zap.Error(err))
	} else if ok {
		opts.SnapshotTime = saved
		a.log.Info("offline mode", zap.Time("snapshot", saved))
	}

	p := tea.NewProgram(ui.New(opts), tea.WithAltScreen())

	stop, err := a.store.Watch(cmd.Context(), func() {
		p.Send(model.CredentialsChangedMsg{})
	})
	if err != nil {
		a.log.Warn("credential watch disabled", zap.Error(err))
	} else {
		defer stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// startMetricsServer serves the client's Prometheus registry. gin's default
// logger would write over the TUI, so the router only gets recovery.
func startMetricsServer(addr string, metrics *api.Metrics, log *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
