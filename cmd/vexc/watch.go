package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/buildcache"
	"github.com/vexlang/vexc/internal/buildsession"
	"github.com/vexlang/vexc/internal/config"
	"github.com/vexlang/vexc/internal/driver"
	"github.com/vexlang/vexc/internal/livefeed"
	"github.com/vexlang/vexc/internal/logging"
	"github.com/vexlang/vexc/internal/telemetry"
)

// runWatch implements `vexc watch <source-root> <build-dir>`: recompile
// every *.vex file under source-root whenever it changes, optionally
// streaming the resulting diagnostics to connected editor clients over
// the livefeed websocket.
//
// Grounded on the teacher's cmd/glyph/server.go watchForChanges: an
// fsnotify.Watcher added on the directory (not the individual file, so
// editors that save atomically via rename-into-place still trigger a
// reload), a debounce timer collapsing bursts of events into one
// rebuild.
func runWatch(cmd *cobra.Command, args []string) error {
	sourceRoot, buildDir := args[0], args[1]
	cfgPath := mustFlagString(cmd, "config")
	cxx := mustFlagString(cmd, "cxx")
	livefeedAddr := mustFlagString(cmd, "livefeed-addr")

	proj, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	session := buildsession.New()
	logger := logging.New(os.Stdout, logging.Text, logging.Info, session.String())
	metrics := telemetry.New()

	cache, err := buildcache.Open(proj)
	if err != nil {
		printWarning(fmt.Sprintf("build cache unavailable, continuing without it: %v", err))
		cache = nil
	} else {
		defer cache.Close()
	}

	var hub *livefeed.Hub
	if livefeedAddr != "" {
		hub = livefeed.NewHub()
		go func() {
			printInfo(fmt.Sprintf("livefeed listening on %s", livefeedAddr))
			if err := http.ListenAndServe(livefeedAddr, hub); err != nil {
				printError(fmt.Errorf("livefeed server: %w", err))
			}
		}()
	}

	opts := driver.Options{
		SourceRoot: sourceRoot,
		BuildDir:   buildDir,
		Session:    session,
		Log:        logger,
		Metrics:    metrics,
		Cache:      cache,
		CXX:        cxx,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("vexc watch: creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, sourceRoot); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	printInfo(fmt.Sprintf("watching %s", sourceRoot))

	rebuild := func(relPath string) {
		res, err := driver.CompileFile(ctx, opts, relPath)
		update := livefeed.Update{File: relPath}
		if err != nil {
			printError(err)
			update.Success = false
			update.Diagnostics = []string{err.Error()}
		} else {
			for _, d := range res.Diagnostics {
				update.Diagnostics = append(update.Diagnostics, d.String())
			}
			update.Success = len(res.Diagnostics) == 0
			if update.Success {
				printSuccess(fmt.Sprintf("rebuilt %s", relPath))
			} else {
				printWarning(fmt.Sprintf("rebuilt %s with %d diagnostic(s)", relPath, len(res.Diagnostics)))
			}
		}
		if hub != nil {
			_ = hub.Broadcast(update)
		}
	}

	debounce := map[string]*time.Timer{}
	const debounceDelay = 150 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".vex") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rel, err := filepath.Rel(sourceRoot, event.Name)
			if err != nil {
				continue
			}
			if t, ok := debounce[rel]; ok {
				t.Stop()
			}
			debounce[rel] = time.AfterFunc(debounceDelay, func() { rebuild(rel) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
