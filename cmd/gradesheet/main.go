package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/gradesheet/internal/export"
	"github.com/pavelanni/gradesheet/internal/grading"
	"github.com/pavelanni/gradesheet/internal/handler"
	appI18n "github.com/pavelanni/gradesheet/internal/i18n"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/report"
	"github.com/pavelanni/gradesheet/internal/session"
)

//go:generate templ generate -path ../../internal/views

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gradesheet",
		Short: "Grade multiple-choice exam spreadsheets against an answer key",
	}

	serve := serveCmd()
	root.AddCommand(serve, gradeCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `gradesheet --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading page",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /grader)")
	f.Int64("max-upload-bytes", 10<<20, "Maximum accepted spreadsheet size in bytes")
	f.Duration("processing-delay", 0, "Pause before each evaluation (e.g. 500ms)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a spreadsheet and write result files",
		Example: `  gradesheet grade -i responses.xlsx -k ABCDABCDABCDABCDABCDABCDA -f csv,xlsx
  gradesheet grade -i responses.csv --key-file key.txt -f html -o out/`,
		RunE: runGrade,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Student responses spreadsheet (.xlsx or .csv, required)")
	f.StringP("key", "k", "", "Answer key, 25 letters A-D (\"ABCD...\" or \"A,B,C,...\")")
	f.String("key-file", "", "Read the answer key from a file instead of --key")
	f.StringSliceP("format", "f", []string{"csv"}, "Export formats (csv, xlsx, html, json)")
	f.StringP("out-dir", "o", ".", "Directory for exported files")
	f.BoolP("quiet", "q", false, "Do not print the results table")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsMutuallyExclusive("key", "key-file")

	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gradesheet")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gradesheet")
	v.AddConfigPath("/etc/gradesheet")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		Addr:            v.GetString("addr"),
		Lang:            v.GetString("lang"),
		BasePath:        basePath,
		MaxUploadBytes:  v.GetInt64("max-upload-bytes"),
		ProcessingDelay: v.GetDuration("processing-delay"),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	sess := session.New(session.WithProcessingDelay(cfg.ProcessingDelay))
	h, err := handler.New(sess, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(cfg.Lang))

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	slog.Info("starting server",
		"addr", cfg.Addr,
		"lang", cfg.Lang,
		"base_path", basePath,
		"max_upload_bytes", cfg.MaxUploadBytes,
		"processing_delay", cfg.ProcessingDelay,
	)
	return http.ListenAndServe(cfg.Addr, r)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	key := v.GetString("key")
	if path := v.GetString("key-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read key file: %w", err)
		}
		key = string(data)
	}

	cfg := model.GradeConfig{
		Input:   v.GetString("input"),
		Key:     strings.TrimSpace(key),
		Formats: v.GetStringSlice("format"),
		OutDir:  v.GetString("out-dir"),
		Quiet:   v.GetBool("quiet"),
	}
	for i, f := range cfg.Formats {
		cfg.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := appI18n.Init("en"); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	return grade(cmd.Context(), cfg, cmd.OutOrStdout())
}

// grade runs one batch evaluation and writes every requested artifact.
func grade(ctx context.Context, cfg model.GradeConfig, out io.Writer) error {
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	sess := session.New()
	if _, err := sess.LoadFile(filepath.Base(cfg.Input), data); err != nil {
		return err
	}
	run, err := sess.Evaluate(ctx, grading.SplitKey(cfg.Key))
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if !cfg.Quiet {
		if err := report.RenderText(out, run.View); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, name := range cfg.Formats {
		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.OutDir, export.Filename(format, run.EvaluatedAt))
		if err := writeArtifact(ctx, path, format, run); err != nil {
			return err
		}
		slog.Info("wrote export", "format", format, "path", path, "run_id", run.ID)
	}
	return nil
}

func writeArtifact(ctx context.Context, path string, format export.Format, run *session.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := export.Write(ctx, f, format, run.Export(), run.View); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", format, err)
	}
	return f.Close()
}
