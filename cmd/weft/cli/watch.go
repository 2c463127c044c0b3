package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/weft/config"
	"github.com/deepnoodle-ai/weft/slogger"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/fsnotify/fsnotify"
	"github.com/pmezard/go-difflib/difflib"
)

// planWatcher re-resolves a plan whenever its files change and prints
// what changed about the execution plan.
type planWatcher struct {
	pattern   string
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    slogger.Logger
	lastEvent map[string]time.Time

	// rendered is the previous plan rendering, diffed against on each
	// change. Color is disabled for it so diffs stay readable.
	rendered string
}

func newPlanWatcher(pattern string, debounce time.Duration) (*planWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &planWatcher{
		pattern:   pattern,
		debounce:  debounce,
		watcher:   watcher,
		logger:    getLogger(),
		lastEvent: make(map[string]time.Time),
	}, nil
}

func (w *planWatcher) start(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addWatchPaths(); err != nil {
		return err
	}

	fmt.Println(headerStyle.Sprint("Watching plan files"))
	fmt.Printf("%s pattern: %s\n", bullet, w.pattern)

	// Resolve once up front so the first change produces a diff.
	w.resolveAndReport(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if err := w.handleEvent(ctx, event); err != nil {
				return err
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

// addWatchPaths watches the directories containing matched files,
// since fsnotify watches directories rather than globs.
func (w *planWatcher) addWatchPaths() error {
	matches, err := doublestar.FilepathGlob(w.pattern)
	if err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", w.pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no plan files match %q", w.pattern)
	}
	dirs := make(map[string]struct{})
	for _, path := range matches {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", "dir", dir)
	}
	return nil
}

func (w *planWatcher) handleEvent(ctx context.Context, event fsnotify.Event) error {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return nil
	}
	if matched, _ := doublestar.PathMatch(w.pattern, filepath.ToSlash(event.Name)); !matched {
		base := filepath.Base(w.pattern)
		if matched, _ = doublestar.PathMatch(base, filepath.Base(event.Name)); !matched {
			return nil
		}
	}
	if last, ok := w.lastEvent[event.Name]; ok && time.Since(last) < w.debounce {
		return nil
	}
	w.lastEvent[event.Name] = time.Now()

	fmt.Printf("\n%s %s changed\n", bullet, event.Name)
	w.resolveAndReport(ctx)
	return nil
}

func (w *planWatcher) resolveAndReport(ctx context.Context) {
	rendered, err := w.resolveOnce(ctx)
	if err != nil {
		fmt.Printf("%s %v\n", errorStyle.Sprint(xmark), err)
		return
	}
	if w.rendered == "" {
		fmt.Print(rendered)
	} else if diff := unifiedDiff(w.rendered, rendered); diff == "" {
		fmt.Printf("%s plan unchanged\n", mutedStyle.Sprint(bullet))
	} else {
		fmt.Print(diff)
	}
	w.rendered = rendered
}

func (w *planWatcher) resolveOnce(ctx context.Context) (string, error) {
	plan, err := config.LoadGlob(w.pattern)
	if err != nil {
		return "", err
	}
	if err := plan.Validate(); err != nil {
		return "", fmt.Errorf("invalid plan: %w", err)
	}
	tasks, err := plan.BuildTasks()
	if err != nil {
		return "", err
	}
	resolver, err := buildResolver(ctx, plan)
	if err != nil {
		return "", err
	}
	result := resolver.Resolve(ctx, tasks, plan.ResolveOptions())
	return renderResult(plan.Name, result), nil
}

// unifiedDiff returns a git-style diff between two plan renderings, or
// an empty string when they are identical.
func unifiedDiff(before, after string) string {
	if before == after {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        strings.SplitAfter(before, "\n"),
		B:        strings.SplitAfter(after, "\n"),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	}
	result, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("error generating diff: %v\n", err)
	}
	return result
}

func registerWatchCommand(app *cli.App) {
	app.Command("watch").
		Description("Watch plan files and re-resolve on changes").
		Args("pattern").
		Flags(
			cli.Int("debounce", "").Default(500).Help("Debounce interval in milliseconds"),
		).
		Run(func(ctx *cli.Context) error {
			parseGlobalFlags(ctx)

			// Color codes inside the stored rendering would corrupt
			// the diffs.
			disableColorForWatch()

			if ctx.NArg() == 0 {
				return cli.Errorf("no plan pattern provided")
			}
			debounce := time.Duration(ctx.Int("debounce")) * time.Millisecond
			watcher, err := newPlanWatcher(ctx.Arg(0), debounce)
			if err != nil {
				return cli.Errorf("%v", err)
			}
			if err := watcher.start(context.Background()); err != nil && err != context.Canceled {
				return cli.Errorf("%v", err)
			}
			return nil
		})
}

func disableColorForWatch() {
	for _, style := range []interface{ DisableColor() }{
		headerStyle, successStyle, errorStyle, warningStyle, timeStyle, mutedStyle,
	} {
		style.DisableColor()
	}
}
