package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aidan-B1409/engr103-autograder/internal/canvas"
	"github.com/Aidan-B1409/engr103-autograder/internal/config"
	"github.com/Aidan-B1409/engr103-autograder/internal/forms"
	"github.com/Aidan-B1409/engr103-autograder/internal/model"
	"github.com/Aidan-B1409/engr103-autograder/internal/output"
	"github.com/Aidan-B1409/engr103-autograder/internal/pipeline"
	"github.com/Aidan-B1409/engr103-autograder/internal/store"
)

func main() {
	// The Canvas token lives in .env outside version control.
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autograder",
		Short: "Grades lecture attendance from survey submissions",
	}

	grade := gradeCmd()
	root.AddCommand(grade, historyCmd())

	// Make "grade" the default when no subcommand is given.
	root.RunE = grade.RunE

	// Register grade flags on root so bare `autograder --date ...` still works.
	root.Flags().AddFlagSet(grade.Flags())

	return root
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Run attendance grading for one lecture date",
		RunE:  runGrade,
	}
	f := cmd.Flags()
	f.Int64("course-id", 0, "Canvas course ID")
	f.Int64P("assignment-id", "a", 0, "Canvas assignment ID of the lecture attendance grade")
	f.String("form-id", "", "Google Form ID of the attendance survey")
	f.StringP("date", "d", "", "Lecture date in YYYY-MM-DD format")
	f.StringP("keyphrase", "k", "", "Keyphrase presented in class; submissions are fuzzy-matched against it")
	f.String("lecture-start", "13:00", "Lecture window start (HH:MM in --timezone)")
	f.String("lecture-end", "14:00", "Lecture window end (HH:MM in --timezone)")
	f.String("timezone", "America/Los_Angeles", "IANA time zone the lecture window is expressed in")
	f.Int("fuzz-threshold", 70, "Minimum keyphrase similarity (0-100)")
	f.String("concept-question", "What is the Concept of the Day?", "Title of the keyphrase question")
	f.StringSlice("rating-columns", []string{"Help", "Understanding", "Speed"}, "Substrings identifying rating columns")
	f.StringSlice("time-columns", []string{"hours"}, "Substrings identifying time-spent columns")
	f.Float64("needs-help-below", 2, "Flag students whose rating falls below this value")
	f.String("canvas-url", "https://canvas.oregonstate.edu", "Canvas base URL")
	f.String("credentials", "client_secrets.json", "Google OAuth client secrets file")
	f.String("token-cache", "token.json", "Cached Google OAuth token file")
	f.String("db", "autograder.db", "Run history SQLite database path")
	f.StringP("out-dir", "o", ".", "Directory for report and record CSV files")
	f.Bool("dry-run", false, "Compute decisions without submitting grades")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	// Required values are checked by config.Run.Validate so they can also
	// arrive via AUTOGRADER_* env vars or the config file.

	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past grading runs",
		RunE:  runHistory,
	}
	f := cmd.Flags()
	f.String("db", "autograder.db", "Run history SQLite database path")
	f.Int64("run", 0, "Show the decisions of one run instead of the run list")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

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

	v.SetEnvPrefix("AUTOGRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("autograder")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/autograder")
	v.AddConfigPath("/etc/autograder")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func configFromViper(v *viper.Viper) *config.Run {
	token := v.GetString("canvas-token") // AUTOGRADER_CANVAS_TOKEN
	if token == "" {
		token = os.Getenv("CANVAS_TOKEN")
	}
	return &config.Run{
		CourseID:        v.GetInt64("course-id"),
		AssignmentID:    v.GetInt64("assignment-id"),
		FormID:          v.GetString("form-id"),
		Date:            v.GetString("date"),
		Keyphrase:       strings.TrimSpace(v.GetString("keyphrase")),
		LectureStart:    v.GetString("lecture-start"),
		LectureEnd:      v.GetString("lecture-end"),
		Timezone:        v.GetString("timezone"),
		FuzzThreshold:   v.GetInt("fuzz-threshold"),
		ConceptQuestion: v.GetString("concept-question"),
		RatingColumns:   v.GetStringSlice("rating-columns"),
		TimeColumns:     v.GetStringSlice("time-columns"),
		NeedsHelpBelow:  v.GetFloat64("needs-help-below"),
		CanvasURL:       v.GetString("canvas-url"),
		CanvasToken:     token,
		Credentials:     v.GetString("credentials"),
		TokenCache:      v.GetString("token-cache"),
		DBPath:          v.GetString("db"),
		OutDir:          v.GetString("out-dir"),
		DryRun:          v.GetBool("dry-run"),
	}
}

func runGrade(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	cfg := configFromViper(v)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer db.Close()

	gradebook := canvas.New(cfg.CanvasURL, cfg.CanvasToken, cfg.CourseID)
	course, err := gradebook.GetCourse(ctx)
	if err != nil {
		return fmt.Errorf("connect to course: %w", err)
	}
	slog.Info("connected to course", "course", course.Name)

	httpClient, err := forms.NewHTTPClient(ctx, cfg.Credentials, cfg.TokenCache)
	if err != nil {
		return fmt.Errorf("authorize forms access: %w", err)
	}
	provider, err := forms.New(ctx, cfg.FormID, httpClient)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, provider, gradebook, cfg)
	if err != nil {
		return err
	}

	reportPath, err := output.WriteReport(cfg.OutDir, result.Report)
	if err != nil {
		return err
	}
	recordsPath, err := output.WriteRecords(cfg.OutDir, cfg.Date, result.Records)
	if err != nil {
		return err
	}

	printFlagged(result.Flagged)

	runID, err := db.RecordRun(model.RunRecord{
		Date:         cfg.Date,
		CourseID:     cfg.CourseID,
		AssignmentID: cfg.AssignmentID,
		Keyphrase:    cfg.Keyphrase,
		Stats:        result.Stats,
		DryRun:       cfg.DryRun,
	}, result.Decisions)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	slog.Info("run complete",
		"run_id", runID,
		"fetched", result.Stats.Fetched,
		"in_window", result.Stats.InWindow,
		"validated", result.Stats.Validated,
		"present", result.Stats.Present,
		"absent", result.Stats.Absent,
		"flagged", result.Stats.Flagged,
		"report", reportPath,
		"records", recordsPath,
	)
	if result.Stats.SubmitFailures > 0 {
		slog.Warn("some grade submissions failed", "count", result.Stats.SubmitFailures)
	}
	return nil
}

func printFlagged(flagged []model.Record) {
	if len(flagged) == 0 {
		fmt.Println("No students in need of support.")
		return
	}
	fmt.Println("Students in need of support:")
	for _, rec := range flagged {
		fmt.Println("  " + rec.Email)
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer db.Close()

	if runID := v.GetInt64("run"); runID > 0 {
		decisions, err := db.DecisionsForRun(runID)
		if err != nil {
			return fmt.Errorf("load decisions for run %d: %w", runID, err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LOGIN\tNAME\tSCORE\tEVIDENCE")
		for _, d := range decisions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Login, d.Name, d.Score, d.EvidenceID)
		}
		return w.Flush()
	}

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tDATE\tASSIGNMENT\tPRESENT\tABSENT\tFLAGGED\tFAILURES\tDRY")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%v\n",
			r.ID, r.Date, r.AssignmentID, r.Stats.Present, r.Stats.Absent,
			r.Stats.Flagged, r.Stats.SubmitFailures, r.DryRun)
	}
	return w.Flush()
}
