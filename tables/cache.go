package tables

import (
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache holds recently loaded tables, keyed by their absolute path. Cached
// tables are prepared for concurrent lookups and must not be modified.
type Cache struct {
	tables *lru.Cache[string, *Table]
	mtx    sync.Mutex
	loads  int
}

// NewCache returns a cache holding up to size tables. Sizes below one are
// treated as one.
func NewCache(size int) *Cache {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[string, *Table](size)
	if err != nil {
		panic(err.Error())
	}
	return &Cache{tables: c}
}

// Load returns the table at path, reading it from disk only if it is not
// already cached.
func (c *Cache) Load(path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if t, ok := c.tables.Get(abs); ok {
		return t, nil
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	if t, ok := c.tables.Get(abs); ok {
		return t, nil
	}

	t, err := Load(abs)
	if err != nil {
		return nil, err
	}
	c.loads++
	c.tables.Add(abs, t.Prepare())
	return t, nil
}

// Add caches t under path, replacing any table already stored there.
func (c *Cache) Add(path string, t *Table) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.tables.Add(abs, t.Prepare())
	return nil
}

// Loads returns the number of times the cache has gone to disk.
func (c *Cache) Loads() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.loads
}

// Len returns the number of cached tables.
func (c *Cache) Len() int { return c.tables.Len() }
