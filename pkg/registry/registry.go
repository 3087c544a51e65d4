// Package registry tracks the live shared memory buffers of this
// process, keyed by region name. It hands out stats only; there is no
// attach-by-name, the name stays an opaque diagnostic.
package registry

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/shmbuf/api"
)

// Registry is a concurrent map of live buffer descriptions.
type Registry struct {
	buffers cmap.ConcurrentMap[string, api.BufferInfo]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{buffers: cmap.New[api.BufferInfo]()}
}

// Default is the process-wide registry buffers join unless constructed
// with an explicit one.
var Default = New()

// Add records a live buffer. Region names are process-unique, so an
// existing entry under the same name is a caller bug; it is overwritten.
func (r *Registry) Add(info api.BufferInfo) {
	r.buffers.Set(info.Name, info)
}

// Remove drops the entry for name, if present.
func (r *Registry) Remove(name string) {
	r.buffers.Remove(name)
}

// Get returns the description of the named buffer.
func (r *Registry) Get(name string) (api.BufferInfo, bool) {
	return r.buffers.Get(name)
}

// Count returns the number of live buffers.
func (r *Registry) Count() int {
	return r.buffers.Count()
}

// TotalBytes returns the sum of mapped bytes across live buffers.
func (r *Registry) TotalBytes() int {
	total := 0
	for item := range r.buffers.IterBuffered() {
		total += item.Val.SizeBytes
	}
	return total
}

// Snapshot returns a copy of all live buffer descriptions.
func (r *Registry) Snapshot() []api.BufferInfo {
	infos := make([]api.BufferInfo, 0, r.buffers.Count())
	for item := range r.buffers.IterBuffered() {
		infos = append(infos, item.Val)
	}
	return infos
}
