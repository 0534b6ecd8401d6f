// Package main provides the CLI entrypoint for sharpen.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/davrk/sharpen/internal/api"
	"github.com/davrk/sharpen/internal/config"
	"github.com/davrk/sharpen/internal/games"
	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/progress"
	"github.com/davrk/sharpen/internal/stats"
	"github.com/davrk/sharpen/internal/statsui"
	"github.com/davrk/sharpen/internal/store"
	syncpkg "github.com/davrk/sharpen/internal/sync"
	"github.com/davrk/sharpen/internal/tui"
)

const (
	defaultStartLevel = 0
	defaultBaseURL    = "https://api.sharpen.fit/v1"
)

var (
	playLevel        int
	playSkipPractice bool

	loginEmail string

	syncBaseURL string
	syncVerbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sharpen",
		Short:         "Terminal cognitive training",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	prog := progress.NewStore(st)
	data, err := prog.Load(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	now := time.Now()
	brainSpeed := progress.BrainSpeedScore(data)
	weekly := progress.WeeklySessionCount(data, now)
	if err := stats.RenderDashboard(out, data, brainSpeed, weekly); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderGameTable(out, data); err != nil {
		return fmt.Errorf("failed to render game table: %w", err)
	}
	for _, line := range stats.BoosterLines(data, now.Format(stats.DateLayout)) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintln(out, "\nPlay: sharpen play <game>   Games: sharpen games   Stats: sharpen stats"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <game>",
		Short: "Play a training game",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
	cmd.Flags().IntVar(&playLevel, "level", defaultStartLevel, "start at a specific difficulty level (0 = level 1)")
	cmd.Flags().BoolVar(&playSkipPractice, "skip-practice", false, "skip the practice trials")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "level", &playLevel, fileCfg.Play.StartLevel)
	applyBoolConfig(cmd, "skip-practice", &playSkipPractice, fileCfg.Play.SkipPractice)

	driver, err := games.ForID(model.GameID(args[0]))
	if err != nil {
		return fmt.Errorf("%w\nList games with: sharpen games", err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	prog := progress.NewStore(st)

	opts := []tui.Option{
		tui.WithRandom(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	if playLevel > 0 {
		opts = append(opts, tui.WithStartLevel(playLevel))
	}
	if playSkipPractice {
		opts = append(opts, tui.WithSkipPractice(true))
	}
	if syncer := newSyncer(fileCfg, prog, quietLogger()); syncer != nil {
		opts = append(opts, tui.WithPusher(syncer))
	}

	gameModel := tui.NewModel(driver, prog, opts...)
	program := tea.NewProgram(gameModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List the training games",
		Args:  cobra.NoArgs,
		RunE:  runGamesCmd,
	}
}

func runGamesCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, driver := range games.All() {
		cfg := driver.Config()
		if _, err := fmt.Fprintf(out, "%-18s %s\n", cfg.ID, cfg.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if _, err := fmt.Fprintf(out, "%-18s %s\n", "", cfg.Description); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Browse progress and session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	prog := progress.NewStore(st)
	statsModel := statsui.NewModel(prog, st)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Request an email login link",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginEmail, "email", "", "email address to send the login link to")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		return fmt.Errorf("--email is required")
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	msg, err := client.RequestLoginLink(context.Background(), email)
	if err != nil {
		return fmt.Errorf("failed to request login link: %w", err)
	}
	if msg == "" {
		msg = "Check your email for a login link, then run: sharpen verify <token>"
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), msg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Complete login with an emailed token",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerifyCmd,
	}
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	creds, err := client.VerifyToken(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to verify token: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Email); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Pull the account's progress right away so the first dashboard after
	// login already reflects it. Failure leaves login itself fine.
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	syncer := syncpkg.New(client, progress.NewStore(st), quietLogger())
	if _, err := syncer.Sync(context.Background()); err != nil {
		logErrf("failed to sync after login: %v\n", err)
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear cached credentials",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := client.Logout(context.Background()); err != nil {
		// Local credentials are cleared even when the server call fails.
		logErrf("logout request failed: %v\n", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	status, err := client.CheckAuth(context.Background())
	if err != nil {
		return fmt.Errorf("failed to check auth: %w", err)
	}
	out := cmd.OutOrStdout()
	if !status.Authenticated {
		if _, err := fmt.Fprintln(out, "Not logged in. Run: sharpen login --email <address>"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(out, status.Email); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync progress with the server",
		Args:  cobra.NoArgs,
		RunE:  runSyncCmd,
	}
	cmd.Flags().StringVar(&syncBaseURL, "base-url", defaultBaseURL, "sync server base URL")
	cmd.Flags().BoolVar(&syncVerbose, "verbose", false, "log sync details")
	return cmd
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &syncBaseURL, fileCfg.Sync.BaseURL)

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if syncVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	creds := api.NewCredentialStore(config.DefaultCredentialsPath())
	client := api.NewClient(syncBaseURL, creds)
	syncer := syncpkg.New(client, progress.NewStore(st), logger)

	res, err := syncer.Sync(context.Background())
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			return fmt.Errorf("not logged in; run: sharpen login --email <address>")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Pulled && res.Pushed:
		_, err = fmt.Fprintf(out, "Synced with server as %s\n", res.Email)
	case res.Pushed:
		_, err = fmt.Fprintf(out, "Uploaded local progress as %s\n", res.Email)
	default:
		_, err = fmt.Fprintf(out, "Merged remote progress; upload pending next sync\n")
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeStore := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeStore, nil
}

func newClient(cmd *cobra.Command) (*api.Client, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	baseURL := defaultBaseURL
	if fileCfg.Sync.BaseURL != nil {
		baseURL = *fileCfg.Sync.BaseURL
	}
	creds := api.NewCredentialStore(config.DefaultCredentialsPath())
	return api.NewClient(baseURL, creds), nil
}

// newSyncer builds the after-session uploader. Returns nil when no
// credentials are cached, so anonymous play never touches the network.
func newSyncer(fileCfg config.FileConfig, prog *progress.Store, logger *log.Logger) *syncpkg.Syncer {
	creds := api.NewCredentialStore(config.DefaultCredentialsPath())
	if creds.Load().SessionToken == "" {
		return nil
	}
	baseURL := defaultBaseURL
	if fileCfg.Sync.BaseURL != nil {
		baseURL = *fileCfg.Sync.BaseURL
	}
	client := api.NewClient(baseURL, creds)
	return syncpkg.New(client, prog, logger)
}

func quietLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	logger.SetLevel(log.ErrorLevel)
	return logger
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# sharpen configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# start-level = %d        # Start difficulty level (0 = level 1)
# skip-practice = false   # Skip practice trials

[sync]
# base-url = %q
`,
		defaultStartLevel,
		defaultBaseURL,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
