// Package storage persists the review queue under the companion's
// workspace directory. The queue file is the single source of truth for
// review items; the events file is an append-only audit trail of
// dispositions.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/planwright/planwright/internal/domain/events"
	"github.com/planwright/planwright/internal/domain/review"
)

const PlanwrightDir = ".planwright"
const QueueFile = "queue.json"
const EventsFile = "events.jsonl"
const ConfigFile = "config.yaml"

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// ResolvePath ensures the path is within the workspace directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, PlanwrightDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, PlanwrightDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", PlanwrightDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, PlanwrightDir))
	return err == nil
}

// QueuePath returns the absolute path of the queue file, for watchers.
func (r *FilesystemRepository) QueuePath() (string, error) {
	return r.ResolvePath(QueueFile)
}

// SaveQueue writes the full item list. Items are never removed from the
// file, only appended or updated in place.
func (r *FilesystemRepository) SaveQueue(items []*review.Item) error {
	path, err := r.ResolvePath(QueueFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal review queue: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadQueue reads the full item list. A missing file is an empty queue.
func (r *FilesystemRepository) LoadQueue() ([]*review.Item, error) {
	retryer := retry.New[[]*review.Item](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]*review.Item, error) {
		path, err := r.ResolvePath(QueueFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return []*review.Item{}, nil
			}
			return nil, fmt.Errorf("failed to read review queue: %w", err)
		}

		var items []*review.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review queue: %w", err)
		}

		return items, nil
	})
}

// AppendEvent appends one domain event to the audit trail.
func (r *FilesystemRepository) AppendEvent(event events.DomainEvent) error {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
