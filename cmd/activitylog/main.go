package main

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/estateline/activitylog/internal/config"
	"github.com/estateline/activitylog/internal/domain/activity"
	"github.com/estateline/activitylog/internal/domain/estate"
	"github.com/estateline/activitylog/internal/repository"
	"github.com/estateline/activitylog/internal/server"
	"github.com/estateline/activitylog/internal/sqlite"
	"github.com/estateline/activitylog/internal/transport"
)

var rootCmd = &cobra.Command{
	Use:   "activitylog",
	Short: "Estate activity log service",
	Long: `Records activity events for estates (tasks, invoices, rent, documents,
collaboration) and serves a paginated feed over HTTP.

Configuration comes from ACTIVITYLOG_* environment variables, an optional
.env file and an optional YAML file (ACTIVITYLOG_CONFIG_PATH).`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ACTIVITYLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(appendCmd())
	rootCmd.AddCommand(seedCmd())
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, closeLog := newLogger(cfg)
			defer closeLog()

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("prepare database path: %w", err)
			}
			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			eventRepo := sqlite.NewEventRepository(db)
			estateRepo := sqlite.NewEstateRepository(db)
			keyRepo := sqlite.NewAPIKeyRepository(db)

			limits := activity.Limits{
				DefaultPageSize: cfg.Feed.DefaultPageSize,
				MaxPageSize:     cfg.Feed.MaxPageSize,
			}
			activitySvc := activity.NewService(eventRepo, estateRepo, limits, logger)
			estateSvc := estate.NewService(estateRepo, activitySvc, logger)

			handler, err := server.New(server.Config{
				Activity: activitySvc,
				Estates:  estateSvc,
				Auth:     transport.NewAPIKeyResolver(keyRepo),
				BasePath: cfg.API.BasePath,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			if addr == "" {
				addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			}
			httpServer := &http.Server{Addr: addr, Handler: handler}

			go func() {
				logger.Info("server listening", "addr", addr, "base_path", cfg.API.BasePath)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", "error", err)
				}
			}()

			waitForShutdown(logger, httpServer)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config host/port)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("prepare database path: %w", err)
			}
			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func keysCmd() *cobra.Command {
	keys := &cobra.Command{Use: "keys", Short: "Manage API keys"}
	keys.AddCommand(keysCreateCmd())
	keys.AddCommand(keysListCmd())
	return keys
}

func keysCreateCmd() *cobra.Command {
	var userID, label string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				token, err := mintToken()
				if err != nil {
					return err
				}
				key := &repository.APIKey{
					ID:      newKeyID(),
					UserID:  userID,
					Name:    label,
					KeyHash: transport.HashToken(token),
				}
				if err := s.keys.Create(ctx, key); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"id": key.ID, "user_id": key.UserID, "token": token})
				}
				fmt.Printf("key %s created for %s\n", key.ID, key.UserID)
				fmt.Println("store this token now, it is not shown again:")
				fmt.Println(token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user the key authenticates")
	cmd.Flags().StringVar(&label, "label", "", "key label")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func keysListCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				keys, err := s.keys.List(ctx, userID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(keys)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Label", "Created"})
				for _, key := range keys {
					tw.AppendRow(table.Row{key.ID, key.Name, key.CreatedAt.Format(time.RFC3339)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user to list keys for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func feedCmd() *cobra.Command {
	var userID, estateID, cursor string
	var limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show one page of a user's activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				page, err := s.activity.ListEvents(ctx, userID, activity.ListOptions{
					EstateID: estateID,
					Cursor:   cursor,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(page)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Time", "Badge", "Label", "Href"})
				for _, item := range page.Items {
					tw.AppendRow(table.Row{item.ID, item.Timestamp.Format(time.RFC3339), item.Badge, item.Label, item.Href})
				}
				tw.Render()
				if page.NextCursor != "" {
					fmt.Println("next cursor:", page.NextCursor)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user whose feed to show")
	cmd.Flags().StringVar(&estateID, "estate", "", "limit the feed to one estate")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor from a previous page")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 for the server default)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func appendCmd() *cobra.Command {
	var estateID, category, action, message, subjectID, subjectType, detailJSON string
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append an activity event",
		RunE: func(cmd *cobra.Command, args []string) error {
			var detail map[string]any
			if detailJSON != "" {
				if err := json.Unmarshal([]byte(detailJSON), &detail); err != nil {
					return fmt.Errorf("parse --detail: %w", err)
				}
			}
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				id, err := s.activity.Append(ctx, activity.AppendRequest{
					EstateID:    estateID,
					Category:    category,
					Action:      action,
					Message:     message,
					SubjectID:   subjectID,
					SubjectType: subjectType,
					Detail:      detail,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int64{"id": id})
				}
				fmt.Println("event", id, "appended")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&estateID, "estate", "", "estate the event belongs to")
	cmd.Flags().StringVar(&category, "category", "", "event category")
	cmd.Flags().StringVar(&action, "action", "", "action name, e.g. invoice_paid")
	cmd.Flags().StringVar(&message, "message", "", "human-readable summary")
	cmd.Flags().StringVar(&subjectID, "subject-id", "", "subject entity id")
	cmd.Flags().StringVar(&subjectType, "subject-type", "", "subject entity type")
	cmd.Flags().StringVar(&detailJSON, "detail", "", "structured payload as JSON")
	_ = cmd.MarkFlagRequired("estate")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo estates and events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				owner := "user-demo-owner"
				collaborator := "user-demo-collaborator"

				maple, err := s.estates.Create(ctx, estate.CreateRequest{
					Name:    "Maple Street 12",
					Address: "12 Maple Street",
					OwnerID: owner,
				})
				if err != nil {
					return err
				}
				oak, err := s.estates.Create(ctx, estate.CreateRequest{
					Name:    "Oak Hill Cottage",
					Address: "3 Oak Hill",
					OwnerID: owner,
				})
				if err != nil {
					return err
				}
				if _, err := s.estates.Share(ctx, estate.ShareRequest{
					EstateID: maple.ID,
					UserID:   collaborator,
				}); err != nil {
					return err
				}

				seeded := []activity.AppendRequest{
					{EstateID: maple.ID, Action: "task_created", Message: "Fix the gutter", SubjectID: "task-1", SubjectType: "task"},
					{EstateID: maple.ID, Action: "invoice_paid", Message: "Invoice #101 paid", SubjectID: "inv-101", SubjectType: "invoice", Detail: map[string]any{"amount": 420}},
					{EstateID: maple.ID, Action: "rent_received", Message: "March rent received", Detail: map[string]any{"amount": 1500}},
					{EstateID: oak.ID, Action: "document_uploaded", Message: "Insurance policy uploaded", SubjectID: "doc-7", SubjectType: "document"},
					{EstateID: oak.ID, Action: "expense_recorded", Message: "Chimney sweep", SubjectID: "exp-3", SubjectType: "expense", Detail: map[string]any{"amount": 90}},
				}
				for _, req := range seeded {
					if _, err := s.activity.Append(ctx, req); err != nil {
						return err
					}
				}

				fmt.Printf("seeded 2 estates and %d events, owner %s, collaborator %s\n", len(seeded), owner, collaborator)
				return nil
			})
		},
	}
}

// --- helpers ---

type services struct {
	activity *activity.Service
	estates  *estate.Service
	keys     repository.APIKeyRepository
}

func withServices(ctx context.Context, fn func(context.Context, services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// CLI output goes to stdout, keep service logs out of it.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limits := activity.Limits{
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
	}
	activitySvc := activity.NewService(sqlite.NewEventRepository(db), sqlite.NewEstateRepository(db), limits, logger)
	estateSvc := estate.NewService(sqlite.NewEstateRepository(db), activitySvc, logger)

	return fn(ctx, services{
		activity: activitySvc,
		estates:  estateSvc,
		keys:     sqlite.NewAPIKeyRepository(db),
	})
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if path := viper.GetString("db"); path != "" {
		cfg.DB.Path = path
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mintToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return "elk_" + hex.EncodeToString(buf), nil
}

func newKeyID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

func newLogger(cfg config.Config) (*slog.Logger, func()) {
	logWriter := io.Writer(os.Stdout)
	closer := func() {}
	if logPath := os.Getenv("ACTIVITYLOG_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			logWriter = fileWriter
			closer = func() { file.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, closer
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
