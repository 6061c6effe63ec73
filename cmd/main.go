package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"RxClinic/cache"
	"RxClinic/config"
	"RxClinic/database"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/routes"
	"RxClinic/services"
	"RxClinic/utils"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	serve := serveCmd()
	rootCmd := &cobra.Command{
		Use:          "rxclinic",
		Short:        "Clinic records API server",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", true, "apply pending migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
				graph, err := checkSchema(db)
				if err != nil {
					return err
				}
				n, err := database.Up(ctx, db, database.Migrations(graph), log)
				if err != nil {
					return err
				}
				fmt.Printf("Applied %d migration(s)\n", n)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
				statuses, err := database.Status(ctx, db, database.Migrations(models.ClinicGraph()))
				if err != nil {
					return err
				}
				for _, s := range statuses {
					applied := "pending"
					if s.AppliedAt != nil {
						applied = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%3d  %-32s %s\n", s.Version, s.Name, applied)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account if the email is free",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return withDatabase(func(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
				graph, err := checkSchema(db)
				if err != nil {
					return err
				}
				resolver, err := repositories.NewResolver(db, graph)
				if err != nil {
					return err
				}
				users := services.NewUserService(services.UserDeps{
					Users:  repositories.NewUserRepository(db, resolver, cache.NewCache(nil), log),
					Locker: database.NewLocker(nil),
					Audit:  services.NewAuditLogger(false, log),
					Log:    log,
				})
				created, err := users.SeedAdmin(ctx, services.AdminProfile(email), password)
				if err != nil {
					return err
				}
				if created {
					fmt.Printf("Admin %s created\n", email)
				} else {
					fmt.Printf("Admin %s already exists\n", email)
				}
				return nil
			})
		},
	}
	createCmd.Flags().String("email", "", "administrator email")
	createCmd.Flags().String("password", "", "administrator password")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func withDatabase(fn func(ctx context.Context, db *gorm.DB, log zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DBURL == "" {
		return errors.New("missing DB_URL environment variable")
	}
	log := newLogger(cfg)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DBURL, poolConfig(cfg), log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(ctx, db, log)
}

func poolConfig(cfg *config.AppConfig) database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 10 * time.Minute,
		Debug:           cfg.IsDev(),
	}
}

// checkSchema validates the relationship graph against the registered models.
func checkSchema(db *gorm.DB) (*models.Graph, error) {
	graph := models.ClinicGraph()
	resolver, err := repositories.NewResolver(db, graph)
	if err != nil {
		return nil, err
	}
	if err := resolver.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid relationship graph")
	}
	return graph, nil
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.DBURL, poolConfig(cfg), log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	graph := models.ClinicGraph()
	if migrate {
		if _, err := database.Up(ctx, db, database.Migrations(graph), log); err != nil {
			return err
		}
	}

	resolver, err := repositories.NewResolver(db, graph)
	if err != nil {
		return err
	}
	if err := resolver.Validate(); err != nil {
		return errors.Wrap(err, "invalid relationship graph")
	}

	// Redis is optional: without it caching, email locks and password
	// reset are disabled.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, database.DefaultRedisConfig(cfg.RedisURL), log)
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set; running without cache and password reset")
	}
	c := cache.NewCache(rdb)

	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		return err
	}

	var mailer utils.Mailer = utils.LogMailer{Log: log, Reveal: cfg.IsDev()}
	if cfg.MailEnabled() {
		mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
		})
	}

	svc := services.New(services.Deps{
		Repos:  repositories.New(db, resolver, c, log),
		Locker: database.NewLocker(rdb),
		Tokens: tokens,
		Codes:  utils.NewResetCodes(c),
		Mailer: mailer,
		Audit:  services.NewAuditLogger(cfg.EnableModelLog, log),
		Log:    log,
	})

	if cfg.AdminEmail != "" {
		if _, err := svc.Users.SeedAdmin(ctx, services.AdminProfile(cfg.AdminEmail), cfg.AdminPassword); err != nil {
			return errors.Wrap(err, "failed to seed admin account")
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        routes.SetupRoutes(cfg, svc, tokens, log),
		ReadTimeout:    cfg.RequestTimeout,
		WriteTimeout:   cfg.RequestTimeout,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	serveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Pool stats are logged periodically while redis is in use.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

wait:
	for {
		select {
		case err := <-serveErr:
			return errors.Wrap(err, "listen failed")
		case <-ticker.C:
			database.LogRedisPool(rdb, log)
		case <-stop:
			break wait
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}

	wg.Wait()
	log.Info().Msg("server exited gracefully")
	return nil
}
