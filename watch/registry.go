// Package watch keeps the set of user-granted ROM folders and polls them for
// new files to import into the catalog.
package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"retro-arcade/constants"
	"retro-arcade/types"
)

// Logger defines the logging needed by this package.
type Logger interface {
	LogWarningf(format string, args ...interface{})
	LogErrorf(format string, args ...interface{})
}

// DirectoryPicker prompts the user to grant access to a directory. An empty
// path with a nil error means the user cancelled.
type DirectoryPicker interface {
	PickDirectory() (string, error)
}

var foldersBucket = []byte(constants.FoldersBucket)

// Registry is the durable set of watched folders.
type Registry struct {
	db  *bolt.DB // nil when folder watching is unavailable
	log Logger
}

// OpenRegistry creates or opens the registry at path. Like the catalog it
// never fails: when the backend cannot be used, List returns nothing and Add
// reports an error outcome.
func OpenRegistry(path string, log Logger) *Registry {
	r := &Registry{log: log}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.LogWarningf("watch: cannot open %s, folder watching disabled: %v", path, err)
		return r
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(foldersBucket)
		return err
	}); err != nil {
		log.LogWarningf("watch: cannot prepare %s, folder watching disabled: %v", path, err)
		db.Close()
		return r
	}
	r.db = db
	return r
}

// Supported reports whether folder watching is available in this environment.
func (r *Registry) Supported() bool {
	return r.db != nil
}

// List returns all watched folders, or nothing when watching is unavailable.
func (r *Registry) List() []types.WatchedFolder {
	if r.db == nil {
		return nil
	}
	var folders []types.WatchedFolder
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(foldersBucket).ForEach(func(k, v []byte) error {
			var folder types.WatchedFolder
			if err := json.Unmarshal(v, &folder); err != nil {
				r.log.LogWarningf("watch: skipping unreadable folder row %q: %v", k, err)
				return nil
			}
			folders = append(folders, folder)
			return nil
		})
	})
	if err != nil {
		r.log.LogErrorf("watch: listing folders: %v", err)
		return nil
	}
	return folders
}

// Add prompts the user for a directory and registers it. Cancellation is a
// distinct aborted outcome, not an error.
func (r *Registry) Add(picker DirectoryPicker) types.AddFolderResult {
	if r.db == nil {
		return types.AddFolderResult{Error: "folder watching is not available in this environment"}
	}

	path, err := picker.PickDirectory()
	if err != nil {
		return types.AddFolderResult{Error: err.Error()}
	}
	if path == "" {
		return types.AddFolderResult{Aborted: true}
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.AddFolderResult{Error: fmt.Sprintf("cannot access %s: %v", path, err)}
	}
	if !info.IsDir() {
		return types.AddFolderResult{Error: fmt.Sprintf("%s is not a directory", path)}
	}

	folder := types.WatchedFolder{
		ID:   "folder_" + uuid.NewString(),
		Name: filepath.Base(path),
		Path: path,
	}
	raw, err := json.Marshal(folder)
	if err != nil {
		return types.AddFolderResult{Error: err.Error()}
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(foldersBucket).Put([]byte(folder.ID), raw)
	})
	if err != nil {
		return types.AddFolderResult{Error: fmt.Sprintf("failed to save folder: %v", err)}
	}
	return types.AddFolderResult{Ok: true, Name: folder.Name}
}

// Remove drops a folder from the registry; removing an unknown id is a no-op.
func (r *Registry) Remove(id string) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(foldersBucket).Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("watch: removing folder %s: %w", id, err)
	}
	return nil
}

// Close releases the durable backend.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
