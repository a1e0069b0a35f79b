package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/logging"
)

// WatchCredential keeps cred in sync with the secret file at path until
// ctx is done. The file is read once up front, then again whenever it is
// written or replaced. Read failures are logged and the previous value is
// kept.
//
// The parent directory is watched rather than the file itself, so secrets
// swapped in by rename, as mounted Kubernetes secrets are, keep being
// tracked.
func WatchCredential(ctx context.Context, path string, cred *client.Credential, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	path = filepath.Clean(path)

	v, err := readSecret(path)
	if err != nil {
		return err
	}
	cred.Update(v)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error("failed to close credential watcher", "error", err)
		}
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	logger.Debug("watching credential", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			v, err := readSecret(path)
			if err != nil {
				logger.Warning("failed to reload credential", "path", path, "error", err)
				continue
			}
			cred.Update(v)
			logger.Info("credential reloaded", "path", path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("credential watcher", "error", err)
		}
	}
}
