package server

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"go.uber.org/zap"
)

// WatchConfiguration watches configurationPath/configuration.json for writes
// and calls reload with the freshly loaded catalog, skipping entirely in
// production. Uses fsnotify to watch configurationPath and ignores events
// for any other file in it, so no poll interval is needed.
func WatchConfiguration(configurationPath string, production bool, log *zap.SugaredLogger, reload func(*metadata.Metadata)) error {
	if production {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	configFile := filepath.Join(configurationPath, "configuration.json")
	if err := watcher.Add(configurationPath); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(configFile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				raw, err := os.ReadFile(configFile)
				if err != nil {
					log.Warnf("server: config watcher: reading %s: %s", configFile, err)
					continue
				}
				m, err := metadata.Load(raw)
				if err != nil {
					log.Warnf("server: config watcher: reloading %s: %s", configFile, err)
					continue
				}
				log.Infof("server: configuration changed, reloaded %s", configFile)
				reload(&m)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("server: config watcher error: %s", err)
			}
		}
	}()

	return nil
}
