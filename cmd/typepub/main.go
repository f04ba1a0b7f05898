// Package main provides the CLI entrypoint for typepub.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typepub/internal/config"
	"github.com/verte-zerg/typepub/internal/epub"
	"github.com/verte-zerg/typepub/internal/library"
	"github.com/verte-zerg/typepub/internal/model"
	"github.com/verte-zerg/typepub/internal/tui"
)

const defaultWidth = 60

var (
	practiceBook    string
	practiceChapter int
	practiceWidth   int
	practiceDir     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typepub [epub-file]",
		Short:         "Touch-typing practice on books",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceBook, "book", "", "open a book from the library by title or author")
	rootCmd.Flags().IntVar(&practiceChapter, "chapter", 0, "chapter to start at (1-based)")
	rootCmd.Flags().IntVar(&practiceWidth, "width", defaultWidth, "text column width")
	rootCmd.Flags().StringVar(&practiceDir, "dir", config.DefaultBooksDir(), "books directory")

	rootCmd.AddCommand(newBooksCmd())
	rootCmd.AddCommand(newChaptersCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "width", &practiceWidth, fileCfg.Practice.Width)
	applyStringConfig(cmd, "dir", &practiceDir, fileCfg.Practice.Dir)

	if practiceWidth < 1 {
		return fmt.Errorf("--width must be >= 1")
	}

	bookPath, err := resolveBookPath(args)
	if err != nil {
		return err
	}

	book, err := epub.Open(bookPath)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}
	defer func() {
		if cerr := book.Close(); cerr != nil {
			logErrf("failed to close book: %v\n", cerr)
		}
	}()

	cfg := model.Config{
		BooksDir: practiceDir,
		Width:    practiceWidth,
		Book:     practiceBook,
		BookPath: bookPath,
		Chapter:  practiceChapter - 1,
	}

	m, err := tui.NewModel(cfg, book)
	if err != nil {
		return fmt.Errorf("failed to prepare session: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveBookPath turns the positional argument or --book query into a
// file path. Library lookups rescan the books directory first so new
// files are found.
func resolveBookPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if practiceBook == "" {
		return "", fmt.Errorf("provide an epub file or --book <query> (see: typepub books)")
	}

	idx, err := library.Open(config.DefaultDBPath())
	if err != nil {
		return "", fmt.Errorf("failed to open library index: %w", err)
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logErrf("failed to close library index: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if _, err := idx.Scan(ctx, practiceDir); err != nil {
		logErrf("failed to scan books directory: %v\n", err)
	}
	info, err := idx.Find(ctx, practiceBook)
	if err != nil {
		return "", fmt.Errorf("no book matching %q in %s: %w", practiceBook, practiceDir, err)
	}
	return info.Path, nil
}

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Scan the books directory and list the library",
		Args:  cobra.NoArgs,
		RunE:  runBooksCmd,
	}
	cmd.Flags().StringVar(&practiceDir, "dir", config.DefaultBooksDir(), "books directory")
	return cmd
}

func runBooksCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dir", &practiceDir, fileCfg.Practice.Dir)

	idx, err := library.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open library index: %w", err)
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logErrf("failed to close library index: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if _, err := idx.Scan(ctx, practiceDir); err != nil {
		return fmt.Errorf("failed to scan %s: %w", practiceDir, err)
	}
	books, err := idx.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	if len(books) == 0 {
		logErrf("No books found in %s\n", practiceDir)
		return nil
	}

	width := outputWidth()
	for _, b := range books {
		line := b.Title
		if b.Author != "" {
			line += " · " + b.Author
		}
		line += "  (" + b.Path + ")"
		if width > 0 {
			line = runewidth.Truncate(line, width, "…")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// outputWidth returns the terminal width, or 0 when stdout is not a
// terminal.
func outputWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 1 {
		return 0
	}
	return width
}

func newChaptersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapters [epub-file]",
		Short: "List the chapters of a book",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChaptersCmd,
	}
	cmd.Flags().StringVar(&practiceBook, "book", "", "book from the library by title or author")
	cmd.Flags().StringVar(&practiceDir, "dir", config.DefaultBooksDir(), "books directory")
	return cmd
}

func runChaptersCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dir", &practiceDir, fileCfg.Practice.Dir)

	bookPath, err := resolveBookPath(args)
	if err != nil {
		return err
	}
	book, err := epub.Open(bookPath)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}
	defer func() {
		if cerr := book.Close(); cerr != nil {
			logErrf("failed to close book: %v\n", cerr)
		}
	}()

	for i, ch := range book.Chapters() {
		title := ch.Title
		if title == "" {
			title = "(untitled)"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, title); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
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
	return fmt.Sprintf(`# typepub configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# width = %d              # Text column width
# dir = %q    # Books directory
`,
		defaultWidth,
		config.DefaultBooksDir(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
