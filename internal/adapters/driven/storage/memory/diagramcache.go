package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// Ensure DiagramCache implements the interface.
var _ driven.DiagramCache = (*DiagramCache)(nil)

// DiagramCache keeps rendered images for the lifetime of the process.
// It lets watch mode skip diagrams that did not change between rebuilds.
type DiagramCache struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewDiagramCache creates an empty cache.
func NewDiagramCache() *DiagramCache {
	return &DiagramCache{
		images: make(map[string][]byte),
	}
}

// Get returns a copy of the image for key.
func (c *DiagramCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	image, ok := c.images[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), image...), true, nil
}

// Put stores a copy of image under key.
func (c *DiagramCache) Put(_ context.Context, key string, image []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[key] = append([]byte(nil), image...)
	return nil
}

// Len returns the number of cached images.
func (c *DiagramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Close drops all cached images.
func (c *DiagramCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string][]byte)
	return nil
}
