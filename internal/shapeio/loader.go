package shapeio

import (
	"fmt"
	"os"
	"sync"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// Cache provides thread-safe caching of loaded drawings to avoid re-reading
// and re-parsing the same point table.
//
// Entries are keyed by the exact path string passed to Load. Different paths
// to the same file (relative vs absolute) produce separate entries.
//
// Cached collections are shared between callers and must be treated as
// read-only. Every package in this module already does so.
//
// # Example Usage
//
//	cache := shapeio.NewCache()
//	coll, err := cache.Load("/path/to/shapes.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/shapes.csv") // Optional: free memory
type Cache struct {
	mu    sync.RWMutex
	files map[string]geometry.PathCollection
}

// NewCache creates an empty cache, ready for concurrent use.
func NewCache() *Cache {
	return &Cache{
		files: make(map[string]geometry.PathCollection),
	}
}

// Load returns the collection parsed from path, reading and parsing the file
// only on the first call for that path.
//
// # Errors
//
//   - Returns an error if the file does not exist or cannot be read
//   - Returns an *IngestionError if the file is not a valid point table
func (c *Cache) Load(path string) (geometry.PathCollection, error) {
	c.mu.RLock()
	if coll, ok := c.files[path]; ok {
		c.mu.RUnlock()
		return coll, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open point table: %w", err)
	}
	defer f.Close()

	coll, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.files[path] = coll
	c.mu.Unlock()

	return coll, nil
}

// Evict removes path from the cache. The next Load reads the file again.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.files, path)
	c.mu.Unlock()
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.files = make(map[string]geometry.PathCollection)
	c.mu.Unlock()
}

// Len returns the number of cached drawings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Summary describes a loaded drawing.
type Summary struct {
	Paths     int     `json:"paths"`
	Polylines int     `json:"polylines"`
	Points    int     `json:"points"`
	MinX      float64 `json:"min_x"`
	MinY      float64 `json:"min_y"`
	MaxX      float64 `json:"max_x"`
	MaxY      float64 `json:"max_y"`

	// PolylineSizes holds the vertex count of each polyline in flattened
	// order.
	PolylineSizes []int `json:"polyline_sizes"`
}

// Summarize counts the paths, polylines and points of coll and reports its
// bounding box.
func Summarize(coll geometry.PathCollection) *Summary {
	b := coll.Bound()
	s := &Summary{
		Paths: len(coll),
		MinX:  b.Min[0],
		MinY:  b.Min[1],
		MaxX:  b.Max[0],
		MaxY:  b.Max[1],
	}
	for _, p := range coll.Flatten() {
		s.Polylines++
		s.Points += len(p)
		s.PolylineSizes = append(s.PolylineSizes, len(p))
	}
	return s
}
