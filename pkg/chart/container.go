package chart

import (
	"bytes"
	"sync"
)

// Container is the mount point a restored chart is written into.
type Container interface {
	Clear()
	Mount(content []byte)
}

// BufferContainer is an in-memory Container. It is safe for concurrent use.
type BufferContainer struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	mounts int
}

// Clear implements Container.
func (c *BufferContainer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

// Mount implements Container. Content is appended to whatever is mounted.
func (c *BufferContainer) Mount(content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Write(content)
	c.mounts++
}

// Bytes returns a copy of the mounted content.
func (c *BufferContainer) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buf.Bytes()...)
}

// Empty reports whether nothing is mounted.
func (c *BufferContainer) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len() == 0
}

// Mounts reports how many times content was mounted.
func (c *BufferContainer) Mounts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounts
}
