package saycheese

import (
	"sync"

	"github.com/google/uuid"
)

// ObjectURLs binds objects, such as a MediaStream, to "blob:" URLs that can be put in
// an element attribute.
type ObjectURLs struct {
	mu      sync.RWMutex
	objects map[string]interface{}
}

// NewObjectURLs creates an empty registry.
func NewObjectURLs() *ObjectURLs {
	return &ObjectURLs{objects: make(map[string]interface{})}
}

var defaultObjectURLs = NewObjectURLs()

// DefaultObjectURLs is the registry shared by sessions created without
// WithObjectURLs.
func DefaultObjectURLs() *ObjectURLs {
	return defaultObjectURLs
}

// CreateObjectURL returns a new URL referring to obj.
func (u *ObjectURLs) CreateObjectURL(obj interface{}) string {
	url := "blob:" + uuid.NewString()

	u.mu.Lock()
	u.objects[url] = obj
	u.mu.Unlock()
	return url
}

// RevokeObjectURL forgets url. Unknown URLs are ignored.
func (u *ObjectURLs) RevokeObjectURL(url string) {
	u.mu.Lock()
	delete(u.objects, url)
	u.mu.Unlock()
}

// Resolve returns the object url refers to.
func (u *ObjectURLs) Resolve(url string) (interface{}, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	obj, ok := u.objects[url]
	return obj, ok
}

// Len returns how many URLs are alive.
func (u *ObjectURLs) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.objects)
}
