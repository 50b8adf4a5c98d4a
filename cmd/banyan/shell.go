package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const shellHelp = `commands:
  list               show the feed as currently loaded
  reload             fetch the feed again
  post <text>        publish a post
  toggle <id|#n>     switch a post between original and alternative phrasing
  theme [name]       show or set the theme
  login [name]       create a stub identity
  whoami             show the stub identity
  stats              remote/fallback counters for this session
  quit`

// runShell is the interactive session: one feed, many commands, until EOF or quit.
func runShell(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "🌳 Banyan shell. Type `help` for commands.")
	printPosts(out, a.feed.Load(ctx))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "list":
			printPosts(out, a.feed.Posts())
		case "reload":
			printPosts(out, a.feed.Load(ctx))
		case "post":
			err = createPost(ctx, a, out, rest)
		case "toggle":
			err = togglePost(ctx, a, out, resolvePostRef(a, rest))
		case "theme":
			var args []string
			if rest != "" {
				args = []string{rest}
			}
			err = theme(a, out, args)
		case "login":
			u := a.session.Login(rest)
			fmt.Fprintf(out, "✅ Logged in as %s (%s)\n", u.Name, u.ID)
		case "whoami":
			if u, ok := a.session.User(); ok {
				fmt.Fprintf(out, "👤 %s <%s> (%s)\n", u.Name, u.Email, u.ID)
			} else {
				fmt.Fprintln(out, "👤 Not logged in")
			}
		case "stats":
			err = printStats(a, out)
		default:
			fmt.Fprintf(out, "unknown command %q, try `help`\n", cmd)
		}
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
		}
	}
}

// resolvePostRef turns "#n" into the id of the n-th listed post.
func resolvePostRef(a *app, ref string) string {
	if !strings.HasPrefix(ref, "#") {
		return ref
	}
	n, err := strconv.Atoi(ref[1:])
	posts := a.feed.Posts()
	if err != nil || n < 1 || n > len(posts) {
		return ref
	}
	return posts[n-1].ID
}

func printStats(a *app, out io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "📊 No remote calls yet.")
		return nil
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(out, "📊 "+l)
	}
	return nil
}
