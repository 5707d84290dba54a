// Package cli wires flags, preferences, and the filesystem watcher into the
// interactive program.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/logging"
	"github.com/interpretive-systems/stagium/internal/prefs"
	"github.com/interpretive-systems/stagium/internal/tui"
	"github.com/interpretive-systems/stagium/internal/watch"
	"github.com/spf13/cobra"
)

// Execute parses arguments and runs the program.
func Execute() error {
	var (
		repoPath  string
		watchMode bool
		theme     string
		commits   int
		syntax    bool
		logFile   string
		debug     bool
	)

	root := &cobra.Command{
		Use:           "stagium",
		Short:         "Interactive staging TUI for git",
		Long:          "Stagium: stage, unstage, and discard changes down to single lines, then commit, without leaving the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitx.Open(repoPath)
			if err != nil {
				return err
			}

			log := logging.Logger(logging.Nop())
			closeLog := func() error { return nil }
			if logFile != "" {
				level := slog.LevelInfo
				if debug {
					level = slog.LevelDebug
				}
				log, closeLog, err = logging.ToFile(logFile, level)
				if err != nil {
					return err
				}
			}
			defer closeLog()

			// explicit flags win and become the new saved default;
			// otherwise saved preferences fill in
			p := prefs.Load(repo.Root())
			if cmd.Flags().Changed("theme") {
				if err := prefs.SaveTheme(repo.Root(), theme); err != nil {
					log.Warn("save theme pref", "error", err)
				}
			} else if p.ThemeSet {
				theme = p.Theme
			}
			if cmd.Flags().Changed("syntax") {
				if err := prefs.SaveSyntax(repo.Root(), syntax); err != nil {
					log.Warn("save syntax pref", "error", err)
				}
			} else if p.SyntaxSet {
				syntax = p.Syntax
			}
			if cmd.Flags().Changed("commits") {
				if err := prefs.SaveCommits(repo.Root(), commits); err != nil {
					log.Warn("save commits pref", "error", err)
				}
			} else if p.CommitsSet {
				commits = p.Commits
			}

			program := tui.NewProgram(tui.Options{
				Backend: repo,
				Logger:  log,
				Theme:   theme,
				Commits: commits,
				Syntax:  syntax,
			})

			if watchMode {
				w, err := watch.Start(repo.Root(), func() {
					program.Send(tui.RefreshRequestMsg{})
				}, log)
				if err != nil {
					// degraded but usable: manual refresh still works
					log.Warn("filesystem watch unavailable", "error", err)
				} else {
					defer w.Close()
				}
			}

			if _, err := program.Run(); err != nil {
				return fmt.Errorf("run: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVarP(&repoPath, "repo", "r", ".", "Path inside the repository to open")
	root.Flags().BoolVarP(&watchMode, "watch", "w", false, "Refresh automatically on filesystem changes")
	root.Flags().StringVar(&theme, "theme", "dark", "Color theme (dark or light)")
	root.Flags().IntVarP(&commits, "commits", "n", 10, "Number of recent commits to list")
	root.Flags().BoolVar(&syntax, "syntax", false, "Syntax-highlight context lines")
	root.Flags().StringVar(&logFile, "log-file", "", "Write structured logs to this file")
	root.Flags().BoolVar(&debug, "debug", false, "Log at debug level (needs --log-file)")

	root.AddCommand(newVersionCmd())

	return root.Execute()
}
