package process

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var errInvalidCacheEntry = errors.New("invalid cache entry value")

// sourceEntry is one cached source's fingerprint: its mtime plus the
// resolved preprocessing option list and tool-profile content hash that
// produced it, so a change to either invalidates the cached result.
type sourceEntry struct {
	MTime      time.Time
	OptionsKey string
}

func (e *sourceEntry) String() string {
	return fmt.Sprintf("%d|%s", e.MTime.UnixNano(), e.OptionsKey)
}

func (e *sourceEntry) MarshalJSON() ([]byte, error) {
	var out bytes.Buffer
	fmt.Fprintf(&out, `"%s"`, e.String())
	return out.Bytes(), nil
}

func (e *sourceEntry) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parts := strings.SplitN(str, "|", 2)
	if len(parts) != 2 {
		return errInvalidCacheEntry
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return errInvalidCacheEntry
	}
	e.MTime = time.Unix(0, nanos)
	e.OptionsKey = parts[1]
	return nil
}

type cacheState struct {
	Sources map[string]*sourceEntry
	Result  CCResult
}

// Cache tracks one source's preprocessing outcome between capture runs,
// keyed on the source's mtime and the resolved option/tool-profile content,
// so an unchanged source skips re-invoking the compiler.
type Cache struct {
	dir       string
	stateFile string
	saved     *cacheState
}

// NewCache opens the incremental cache rooted at "<outputDir>/.xcalbuild-cache"
// for one source, identified by the SHA-1 of its absolute path.
func NewCache(outputDir, sourcePath string) *Cache {
	dir := filepath.Join(outputDir, ".xcalbuild-cache")
	h := sha1.Sum([]byte(sourcePath))
	return &Cache{
		dir:       dir,
		stateFile: filepath.Join(dir, hex.EncodeToString(h[:])+".state"),
	}
}

// OptionsKey derives the cache fingerprint for a resolved option list plus a
// tool-profile content hash, so either changing invalidates the cache.
func OptionsKey(ppOptions []string, toolchainDigest string) string {
	h := sha1.New()
	for _, o := range ppOptions {
		h.Write([]byte(o))
		h.Write([]byte{0})
	}
	h.Write([]byte(toolchainDigest))
	return hex.EncodeToString(h.Sum(nil))
}

// Load reads any previously persisted state; a missing file is not an error,
// it simply means there is nothing cached yet.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.stateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cache %q: %w", c.stateFile, err)
	}
	var saved cacheState
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("parse cache %q: %w", c.stateFile, err)
	}
	c.saved = &saved
	return nil
}

// Hit reports whether the cached entry for sourcePath is still valid against
// its current on-disk mtime and optionsKey, returning the cached CCResult
// when it is.
func (c *Cache) Hit(sourcePath, optionsKey string) (*CCResult, bool) {
	if c.saved == nil {
		return nil, false
	}
	entry := c.saved.Sources[sourcePath]
	if entry == nil || entry.OptionsKey != optionsKey {
		return nil, false
	}
	info, err := os.Stat(sourcePath)
	if err != nil || info.ModTime() != entry.MTime {
		return nil, false
	}
	if _, err := os.Stat(c.saved.Result.Path); err != nil {
		return nil, false
	}
	result := c.saved.Result
	return &result, true
}

// Store persists result as the fresh cache entry for sourcePath.
func (c *Cache) Store(sourcePath, optionsKey string, result CCResult) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat %q: %w", sourcePath, err)
	}
	state := cacheState{
		Sources: map[string]*sourceEntry{
			sourcePath: {MTime: info.ModTime(), OptionsKey: optionsKey},
		},
		Result: result,
	}
	if err := os.MkdirAll(c.dir, 0777); err != nil {
		return fmt.Errorf("creating cache dir %q: %w", c.dir, err)
	}
	data, err := json.Marshal(&state)
	if err != nil {
		return fmt.Errorf("encoding cache state: %w", err)
	}
	if err := os.WriteFile(c.stateFile, data, 0644); err != nil {
		return fmt.Errorf("writing cache state %q: %w", c.stateFile, err)
	}
	return nil
}
