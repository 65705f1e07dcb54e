package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of filesystem events an editor
// fires per save into a single re-render.
const watchDebounce = 100 * time.Millisecond

func handleWatch() {
	var cfg renderConfig
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addRenderFlags(fs, &cfg)
	addAnimationFlags(fs, &cfg)
	fs.Parse(os.Args[2:])

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: cast2gif watch [flags] <input.cast> <output.gif>")
		os.Exit(1)
	}
	if err := runWatch(&cfg, fs.Arg(0), fs.Arg(1)); err != nil {
		log.Fatalf("Failed to watch: %v", err)
	}
}

// runWatch renders once, then re-renders outPath whenever inPath
// changes. A failed render is logged and waits for the next change.
func runWatch(cfg *renderConfig, inPath, outPath string) error {
	if inPath == "-" {
		return fmt.Errorf("cannot watch stdin")
	}
	cfg.force = true

	render := func() {
		start := time.Now()
		if err := runConvert(cfg, inPath, outPath); err != nil {
			log.Printf("render failed: %v", err)
			return
		}
		log.Printf("rendered in %v", time.Since(start).Round(time.Millisecond))
	}
	render()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory: editors usually replace the file on
	// save, which shows up as Create or Rename of a new inode rather
	// than Write to the old one.
	dir := filepath.Dir(inPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	log.Printf("watching %s", inPath)

	target := filepath.Base(inPath)
	pending := time.NewTimer(watchDebounce)
	if !pending.Stop() {
		<-pending.C
	}
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevantEvent(ev, target) {
				pending.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		case <-pending.C:
			render()
		}
	}
}

// relevantEvent reports whether ev is a change to the watched file.
func relevantEvent(ev fsnotify.Event, target string) bool {
	if filepath.Base(ev.Name) != target {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
