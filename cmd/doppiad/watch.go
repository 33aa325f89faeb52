package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/essedev/doppia.os/internal/util"
)

const debounceWindow = 250 * time.Millisecond

// watcherSource is the subset of *fsnotify.Watcher consumed by watchConfig.
type watcherSource struct {
	Events <-chan fsnotify.Event
	Errors <-chan error
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	watchEvents(logger, watcherSource{Events: watcher.Events, Errors: watcher.Errors}, target, reloadRequests)
}

// watchEvents coalesces writes to target into one reload request per quiet
// period.
func watchEvents(logger *util.Logger, src watcherSource, target string, reloadRequests chan<- string) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-src.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-src.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}
