// Package main provides the CLI entrypoint for readingqueue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunansy/readingqueue/internal/config"
	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/stats"
	"github.com/kunansy/readingqueue/internal/store"
	"github.com/kunansy/readingqueue/internal/tracker"
	"github.com/kunansy/readingqueue/internal/trend"
)

const defaultSpanSize = 7

var (
	dbPath string

	materialTitle   string
	materialAuthors string
	materialPages   int
	materialTags    string
	materialStatus  string

	startDate    string
	completeDate string

	logMaterial string
	logCount    int
	logDate     string

	statsMaterials bool
	statsCompleted bool
	statsTop       int

	trendSpanSize int
	trendNotes    bool
	trendCompare  bool
	trendPlot     bool

	noteMaterial string
	noteContent  string
	noteChapter  int
	notePage     int
	noteDate     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "readingqueue",
		Short:         "Reading log tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runLogShowCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")

	rootCmd.AddCommand(newMaterialCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newEstimateCmd())
	rootCmd.AddCommand(newTrendCmd())
	rootCmd.AddCommand(newNoteCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// openStore resolves the database path from the config file and the --db
// flag, the flag winning, and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Tracker.DBPath)

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// parseDateFlag parses a DD-MM-YYYY flag value, falling back to today when
// the flag was not given.
func parseDateFlag(value string, today dateutil.Date) (dateutil.Date, error) {
	if value == "" {
		return today, nil
	}
	date, err := dateutil.Parse(value)
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("invalid date %q, expected DD-MM-YYYY: %w", value, err)
	}
	return date, nil
}

func newMaterialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Manage materials",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a material to the queue",
		Args:  cobra.NoArgs,
		RunE:  runMaterialAddCmd,
	}
	addCmd.Flags().StringVar(&materialTitle, "title", "", "material title")
	addCmd.Flags().StringVar(&materialAuthors, "authors", "", "material authors")
	addCmd.Flags().IntVar(&materialPages, "pages", 0, "total pages")
	addCmd.Flags().StringVar(&materialTags, "tags", "", "comma-separated tags")

	startCmd := &cobra.Command{
		Use:   "start <material-id>",
		Short: "Start reading a material",
		Args:  cobra.ExactArgs(1),
		RunE:  runMaterialStartCmd,
	}
	startCmd.Flags().StringVar(&startDate, "date", "", "start date (DD-MM-YYYY, default today)")

	completeCmd := &cobra.Command{
		Use:   "complete <material-id>",
		Short: "Complete a material",
		Args:  cobra.ExactArgs(1),
		RunE:  runMaterialCompleteCmd,
	}
	completeCmd.Flags().StringVar(&completeDate, "date", "", "completion date (DD-MM-YYYY, default today)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List materials",
		Args:  cobra.NoArgs,
		RunE:  runMaterialListCmd,
	}
	listCmd.Flags().StringVar(&materialStatus, "status", "all", "filter: all, queue, reading or completed")

	cmd.AddCommand(addCmd, startCmd, completeCmd, listCmd)
	return cmd
}

func runMaterialAddCmd(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(materialTitle) == "" {
		return fmt.Errorf("--title must not be empty")
	}
	if materialPages <= 0 {
		return fmt.Errorf("--pages must be > 0")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	material, err := st.AddMaterial(context.Background(), materialTitle, materialAuthors, materialPages, materialTags)
	if err != nil {
		return fmt.Errorf("failed to add material: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added «%s»: %s\n", material.Title, material.ID)
	return err
}

func runMaterialStartCmd(cmd *cobra.Command, args []string) error {
	today := dateutil.Today(time.Now())
	date, err := parseDateFlag(startDate, today)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.StartMaterial(context.Background(), args[0], date, today); err != nil {
		return fmt.Errorf("failed to start material: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Started at %s\n", date)
	return err
}

func runMaterialCompleteCmd(cmd *cobra.Command, args []string) error {
	today := dateutil.Today(time.Now())
	date, err := parseDateFlag(completeDate, today)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.CompleteMaterial(context.Background(), args[0], date); err != nil {
		return fmt.Errorf("failed to complete material: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Completed at %s\n", date)
	return err
}

func runMaterialListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	out := cmd.OutOrStdout()
	switch materialStatus {
	case "queue", "all":
		free, err := st.FreeMaterials(ctx)
		if err != nil {
			return fmt.Errorf("failed to list queue: %w", err)
		}
		for _, m := range free {
			if _, err := fmt.Fprintf(out, "queue\t%s\t«%s», %d pages\n", m.ID, m.Title, m.Pages); err != nil {
				return err
			}
		}
		if materialStatus == "queue" {
			return nil
		}
		fallthrough
	case "reading":
		reading, err := st.ReadingMaterials(ctx)
		if err != nil {
			return fmt.Errorf("failed to list reading materials: %w", err)
		}
		for _, m := range reading {
			if _, err := fmt.Fprintf(out, "reading\t%s\t«%s», %d pages, started %s\n",
				m.Material.ID, m.Material.Title, m.Material.Pages, m.Status.StartedAt); err != nil {
				return err
			}
		}
		if materialStatus == "reading" {
			return nil
		}
		fallthrough
	case "completed":
		completed, err := st.CompletedMaterials(ctx)
		if err != nil {
			return fmt.Errorf("failed to list completed materials: %w", err)
		}
		for _, m := range completed {
			if _, err := fmt.Fprintf(out, "completed\t%s\t«%s», %d pages, %s - %s\n",
				m.Material.ID, m.Material.Title, m.Material.Pages,
				m.Status.StartedAt, *m.Status.CompletedAt); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown --status %q (want all, queue, reading or completed)", materialStatus)
	}
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage the reading log",
		RunE:  runLogShowCmd,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Log pages read on a day",
		Args:  cobra.NoArgs,
		RunE:  runLogAddCmd,
	}
	addCmd.Flags().StringVar(&logMaterial, "material", "", "material id")
	addCmd.Flags().IntVar(&logCount, "count", 0, "pages read")
	addCmd.Flags().StringVar(&logDate, "date", "", "date (DD-MM-YYYY, default today)")

	cmd.AddCommand(addCmd)
	return cmd
}

func runLogAddCmd(cmd *cobra.Command, _ []string) error {
	if logMaterial == "" {
		return fmt.Errorf("--material must not be empty")
	}
	if logCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	today := dateutil.Today(time.Now())
	date, err := parseDateFlag(logDate, today)
	if err != nil {
		return err
	}
	if date.After(today) {
		return fmt.Errorf("date %s is in the future", date)
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := tracker.New(st).LogPages(context.Background(), date, logMaterial, logCount); err != nil {
		return fmt.Errorf("failed to log pages: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged %d pages at %s\n", logCount, date)
	return err
}

func runLogShowCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	log, err := tracker.New(st).Log(ctx)
	if err != nil {
		return fmt.Errorf("failed to load log: %w", err)
	}
	if log.Len() == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "The reading log is empty.")
		return err
	}
	titles, err := st.MaterialTitles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load titles: %w", err)
	}
	return stats.RenderLog(cmd.OutOrStdout(), log, titles)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsMaterials, "materials", false, "per-material statistics with forecasts")
	cmd.Flags().BoolVar(&statsCompleted, "completed", false, "statistics of completed materials")
	cmd.Flags().IntVar(&statsTop, "top", 0, "show the N most productive days")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	today := dateutil.Today(time.Now())
	tr := tracker.New(st)
	out := cmd.OutOrStdout()

	if statsTop > 0 {
		series, err := tr.Series(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to build series: %w", err)
		}
		return stats.RenderTopDays(out, stats.TopDays(series, statsTop))
	}
	if statsCompleted {
		materials, err := tr.CompletedStatistics(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to compute completed statistics: %w", err)
		}
		return stats.RenderMaterialStatistics(out, materials)
	}
	if statsMaterials {
		materials, err := tr.MaterialStatistics(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to compute material statistics: %w", err)
		}
		return stats.RenderMaterialStatistics(out, materials)
	}

	s, err := tr.Statistics(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	return stats.RenderLogStatistics(out, s)
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Forecast the reading queue",
		Args:  cobra.NoArgs,
		RunE:  runEstimateCmd,
	}
}

func runEstimateCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	today := dateutil.Today(time.Now())
	estimates, err := tracker.New(st).Estimates(context.Background(), today)
	if err != nil {
		return fmt.Errorf("failed to estimate the queue: %w", err)
	}
	return stats.RenderEstimates(cmd.OutOrStdout(), estimates)
}

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show activity trends over the last span",
		Args:  cobra.NoArgs,
		RunE:  runTrendCmd,
	}
	cmd.Flags().IntVar(&trendSpanSize, "span", defaultSpanSize, "span size in days")
	cmd.Flags().BoolVar(&trendNotes, "notes", false, "trend of notes instead of pages")
	cmd.Flags().BoolVar(&trendCompare, "compare", false, "also show the previous span")
	cmd.Flags().BoolVar(&trendPlot, "plot", false, "plot the span as a chart")
	return cmd
}

func runTrendCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "span", &trendSpanSize, fileCfg.Tracker.SpanSize)
	if trendSpanSize <= 0 {
		return fmt.Errorf("--span must be > 0")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	today := dateutil.Today(time.Now())
	tr := tracker.New(st)

	span, err := trend.LastSpan(trendSpanSize, today)
	if err != nil {
		return fmt.Errorf("failed to build span: %w", err)
	}
	spans := []trend.TimeSpan{span}
	if trendCompare {
		spans = append(spans, span.Shift(-trendSpanSize))
	}

	out := cmd.OutOrStdout()
	for i, s := range spans {
		if i > 0 {
			if _, err := fmt.Fprintln(out, ""); err != nil {
				return err
			}
		}
		var aggregated trend.SpanStatistics
		if trendNotes {
			aggregated, err = tr.NotesTrend(ctx, s)
		} else {
			aggregated, err = tr.ReadingTrend(ctx, s)
		}
		if err != nil {
			return fmt.Errorf("failed to aggregate span %s: %w", s, err)
		}
		if _, err := fmt.Fprintln(out, aggregated.Report()); err != nil {
			return err
		}
		if trendPlot {
			title := "Pages per day"
			if trendNotes {
				title = "Notes per day"
			}
			if err := trend.Plot(out, title, aggregated, 0, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note to a material",
		Args:  cobra.NoArgs,
		RunE:  runNoteAddCmd,
	}
	addCmd.Flags().StringVar(&noteMaterial, "material", "", "material id")
	addCmd.Flags().StringVar(&noteContent, "content", "", "note content")
	addCmd.Flags().IntVar(&noteChapter, "chapter", 0, "chapter number")
	addCmd.Flags().IntVar(&notePage, "page", 0, "page number")
	addCmd.Flags().StringVar(&noteDate, "date", "", "date (DD-MM-YYYY, default today)")

	cmd.AddCommand(addCmd)
	return cmd
}

func runNoteAddCmd(cmd *cobra.Command, _ []string) error {
	if noteMaterial == "" {
		return fmt.Errorf("--material must not be empty")
	}
	if strings.TrimSpace(noteContent) == "" {
		return fmt.Errorf("--content must not be empty")
	}
	if notePage <= 0 {
		return fmt.Errorf("--page must be > 0")
	}
	today := dateutil.Today(time.Now())
	date, err := parseDateFlag(noteDate, today)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.AddNote(context.Background(), noteMaterial, noteContent, noteChapter, notePage, date); err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Note added")
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# readingqueue configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# db-path = %q   # Path to the SQLite database
# span-size = %d # Trend span size in days
`,
		config.DefaultDBPath(),
		defaultSpanSize,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
