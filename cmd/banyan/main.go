package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"banyan/internal/config"
	"banyan/internal/core/domain"

	"github.com/spf13/cobra"
)

var (
	verbose bool

	current *app
)

var rootCmd = &cobra.Command{
	Use:   "banyan",
	Short: "Banyan feed client with offline fallback and alternative phrasings",
	Long: `banyan talks to the Banyan posting API and keeps a local copy of the feed.

When the API is unreachable, reads come from the local cache, new posts are
kept locally under a local- id, and alternative phrasings are produced by a
built-in softening table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		current, err = newApp(cmd.Context(), cfg, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), current, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session (the default when no command is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), current, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Load and print the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		printPosts(cmd.OutOrStdout(), current.feed.Load(cmd.Context()))
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post [text]",
	Short: "Publish a post (kept locally when the API is down)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createPost(cmd.Context(), current, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [post-id]",
	Short: "Switch a post between its original and alternative phrasing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleOnce(cmd.Context(), current, cmd.OutOrStdout(), args[0])
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Create a local stub identity (no real authentication)",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := current.session.Login(strings.Join(args, " "))
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s (%s)\n", u.Name, u.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stub identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.session.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "👋 Logged out")
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or set the display theme (default, retro, neon, cool)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return theme(current, cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.AddCommand(shellCmd, postsCmd, postCmd, toggleCmd, loginCmd, logoutCmd, themeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func createPost(ctx context.Context, a *app, out io.Writer, text string) error {
	authorID := a.authorID()
	if authorID == "" {
		return fmt.Errorf("not logged in; run `banyan login` first")
	}
	p, err := a.feed.Create(ctx, authorID, text)
	if errors.Is(err, domain.ErrValidationRejected) {
		fmt.Fprintln(out, "⚠️  Post is empty, nothing was published.")
		return nil
	}
	if err != nil {
		return err
	}
	if p.IsLocal() {
		fmt.Fprintf(out, "📄 Saved locally as %s (API unreachable)\n", p.ID)
	} else {
		fmt.Fprintf(out, "🚀 Published as %s\n", p.ID)
	}
	return nil
}

func togglePost(ctx context.Context, a *app, out io.Writer, id string) error {
	p, err := a.feed.Toggle(ctx, id)
	if errors.Is(err, domain.ErrPostNotFound) {
		fmt.Fprintf(out, "⚠️  No post with id %s\n", id)
		return nil
	}
	if err != nil {
		return err
	}
	printPost(out, 0, p)
	return nil
}

// toggleOnce serves the one-shot toggle command. The cached feed is used when
// it already holds the post, so a stored phrasing survives between runs; a
// remote reload only happens for posts the cache does not know.
func toggleOnce(ctx context.Context, a *app, out io.Writer, id string) error {
	if !containsPost(a.feed.LoadCached(), id) {
		a.feed.Load(ctx)
	}
	return togglePost(ctx, a, out, id)
}

func containsPost(posts []domain.Post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func theme(a *app, out io.Writer, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(out, "🎨 Theme: %s\n", a.session.Theme())
		return nil
	}
	if !a.session.SetTheme(domain.ThemeName(args[0])) {
		return fmt.Errorf("unknown theme %q (choose from %v)", args[0], domain.Themes)
	}
	fmt.Fprintf(out, "🎨 Theme set to %s\n", args[0])
	return nil
}

func printPosts(out io.Writer, posts []domain.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(out, "尚無貼文")
		return
	}
	for i, p := range posts {
		printPost(out, i+1, p)
	}
}

func printPost(out io.Writer, n int, p domain.Post) {
	mode := "原文"
	if p.IsRephrased {
		mode = "替代說法"
	}
	prefix := ""
	if n > 0 {
		prefix = fmt.Sprintf("#%d ", n)
	}
	fmt.Fprintf(out, "%s[%s] %s · %s · %s\n    %s\n", prefix, p.ID, p.Username, p.CreatedAtDisplay, mode, p.CurrentText())
}
