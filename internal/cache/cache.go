// Package cache stores assembled altitude mosaics on disk so repeat
// renders of the same area skip the per-tile zip parsing. Entries are
// MessagePack encoded and keyed by the area they cover.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/grid"
	"github.com/mholden/osmaps/internal/terrain"
)

// formatVersion guards against decoding entries written by an older
// layout of the Mosaic struct. Bump it when the struct changes.
const formatVersion = 1

type entry struct {
	Version int             `msgpack:"version"`
	Mosaic  *terrain.Mosaic `msgpack:"mosaic"`
}

// Cache is a directory of cached mosaics.
type Cache struct {
	dir string
}

// New returns a Cache rooted at dir, creating it if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(area grid.Area) string {
	name := strings.ReplaceAll(area.Label(), " ", "_")
	return filepath.Join(c.dir, name+".mosaic")
}

// Get returns the cached mosaic for an area, or nil when there is no
// usable entry. Stale-format and corrupt entries are treated as misses.
func (c *Cache) Get(area grid.Area) (*terrain.Mosaic, error) {
	data, err := os.ReadFile(c.path(area))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry for %s: %w", area.Label(), err)
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil || e.Version != formatVersion {
		// Unreadable or written by another version; re-parse from source.
		return nil, nil
	}
	return e.Mosaic, nil
}

// Put stores a mosaic. The write is atomic: a temp file in the same
// directory renamed over the final path.
func (c *Cache) Put(m *terrain.Mosaic) error {
	data, err := msgpack.Marshal(entry{Version: formatVersion, Mosaic: m})
	if err != nil {
		return fmt.Errorf("encoding mosaic for %s: %w", m.Area.Label(), err)
	}

	tmp, err := os.CreateTemp(c.dir, "mosaic-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry for %s: %w", m.Area.Label(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.path(m.Area)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("placing cache entry for %s: %w", m.Area.Label(), err)
	}
	return nil
}

// Load fetches the mosaic for an area through the cache: a hit is
// returned as-is, a miss is assembled from src and stored. The bool
// reports whether the cache served the mosaic. A nil Cache receiver
// just assembles.
func (c *Cache) Load(src terrain.TileReader, area grid.Area, logger *zap.SugaredLogger) (*terrain.Mosaic, bool, error) {
	if c != nil {
		if m, err := c.Get(area); err != nil {
			return nil, false, err
		} else if m != nil {
			return m, true, nil
		}
	}

	m, err := terrain.Assemble(src, area, logger)
	if err != nil {
		return nil, false, err
	}
	if c != nil {
		if err := c.Put(m); err != nil {
			logger.Warnf("caching mosaic for %s: %v", area.Label(), err)
		}
	}
	return m, false, nil
}
