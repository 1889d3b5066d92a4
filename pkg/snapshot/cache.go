package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// FormatVersion is the version of the cache file format written by this
// binary. Cache files with a different major version can't be read.
const FormatVersion = "1.0.0"

// SupportedFormats are the cache file versions that can be read.
const SupportedFormats = ">= 1.0.0, < 2.0.0"

// fs holds the cache file. Tests use a MemMapFs.
var fs = afero.NewOsFs()

var supportedFormat = mustConstraint(SupportedFormats)

func mustConstraint(c string) goversion.Constraints {
	constraint, err := goversion.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// cacheFile is the layout of the cache on disk.
type cacheFile struct {
	Version string   `json:"version"`
	Courses Snapshot `json:"courses"`
}

type incompatibleCacheError struct {
	path, version string
}

func (err incompatibleCacheError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleCacheError) FriendlyMessage() string {
	return "The course cache at " + err.path + " was written by an " +
		"incompatible version of lessonsync (format " + err.version + ").\n" +
		"Run `lessonsync cache refresh` to rebuild it."
}

// Cache persists a Snapshot to a single JSON file.
//
// The cache is never checked for freshness. Once it exists it's used as is
// until it's refreshed or cleared.
type Cache struct {
	path   string
	client api.Client
}

// NewCache returns a cache stored at path. The client is used to build the
// snapshot when the cache doesn't exist yet, and may be nil if the cache is
// only loaded or cleared.
func NewCache(path string, client api.Client) *Cache {
	return &Cache{path: path, client: client}
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// Exists returns whether the cache file exists.
func (c *Cache) Exists() (bool, error) {
	return afero.Exists(fs, c.path)
}

// Get returns the cached snapshot. If there's no cache yet, the snapshot is
// downloaded and written to the cache first. A cache that exists but holds
// no courses is an error rather than a cache miss.
func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	exists, err := c.Exists()
	if err != nil {
		return nil, errors.WithContext(err, "check cache")
	}

	if !exists {
		log.WithField("path", c.path).Info(
			"Cache file not found. Downloading and caching all data from Mavenseed.")
		if _, err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return c.Load()
}

// Refresh downloads a new snapshot and overwrites the cache with it.
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	if c.client == nil {
		return nil, errors.New("no API client to build the cache with")
	}

	snapshot, err := Build(ctx, c.client)
	if err != nil {
		return nil, errors.WithContext(err, "download snapshot")
	}

	if err := c.Save(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Load reads the snapshot from the cache file.
func (c *Cache) Load() (Snapshot, error) {
	data, err := afero.ReadFile(fs, c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: c.path}
		}
		return nil, errors.WithContext(err, "read cache")
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.ErrEmptyCache
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, c.corruptedError(err)
	}

	_, hasVersion := keys["version"]
	_, hasCourses := keys["courses"]
	if !hasVersion && !hasCourses {
		return c.loadUnversioned(data)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, c.corruptedError(err)
	}

	if len(file.Courses) == 0 {
		return nil, errors.ErrEmptyCache
	}

	if file.Version == "" {
		return nil, errors.WithContext(errors.MissingFieldError{Field: "version"}, c.path)
	}

	version, err := goversion.NewVersion(file.Version)
	if err != nil || !supportedFormat.Check(version) {
		return nil, incompatibleCacheError{c.path, file.Version}
	}
	return file.Courses, nil
}

// loadUnversioned reads a cache that is a bare mapping from course title to
// chapters, the layout used before the cache carried a format version.
func (c *Cache) loadUnversioned(data []byte) (Snapshot, error) {
	var courses Snapshot
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, c.corruptedError(err)
	}
	if len(courses) == 0 {
		return nil, errors.ErrEmptyCache
	}

	log.WithField("path", c.path).Debug("Read an unversioned course cache")
	return courses, nil
}

func (c *Cache) corruptedError(err error) error {
	return errors.NewFriendlyError("The course cache at %s is corrupted: %s\n"+
		"Run `lessonsync cache refresh` to rebuild it.", c.path, err)
}

// Save writes the snapshot to the cache file, creating its directory if
// needed.
func (c *Cache) Save(snapshot Snapshot) error {
	dir := filepath.Dir(c.path)
	if exists, err := afero.DirExists(fs, dir); err == nil && !exists {
		log.WithField("dir", dir).Info("Creating cache directory.")
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.WithContext(err, "create cache directory")
	}

	data, err := json.MarshalIndent(cacheFile{
		Version: FormatVersion,
		Courses: snapshot,
	}, "", "  ")
	if err != nil {
		return errors.WithContext(err, "marshal cache")
	}

	log.WithField("path", c.path).Infof("Writing the data of %d courses to the cache.", len(snapshot))
	if err := afero.WriteFile(fs, c.path, data, 0644); err != nil {
		return errors.WithContext(err, "write cache")
	}
	return nil
}

// Clear deletes the cache file. It's not an error if there's no cache.
func (c *Cache) Clear() error {
	if err := fs.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return errors.WithContext(err, "remove cache")
	}
	return nil
}
