package hub

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds the active connections keyed by identifier, in insertion
// order. It is not safe for concurrent use; the hub run loop owns it.
type Registry struct {
	conns *orderedmap.OrderedMap[string, Connection]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		conns: orderedmap.New[string, Connection](),
	}
}

// Register inserts conn. It fails with ErrDuplicateConnection if the
// identifier is already present and leaves the existing entry untouched.
func (r *Registry) Register(conn Connection) error {
	if _, exists := r.conns.Get(conn.ID()); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateConnection, conn.ID())
	}
	r.conns.Set(conn.ID(), conn)
	return nil
}

// Unregister removes the entry for id. Removing an absent id is a no-op.
func (r *Registry) Unregister(id string) (Connection, bool) {
	return r.conns.Delete(id)
}

// Get returns the connection registered under id
func (r *Registry) Get(id string) (Connection, bool) {
	return r.conns.Get(id)
}

// Size returns the number of registered connections
func (r *Registry) Size() int {
	return r.conns.Len()
}

// ForEach visits every registered connection. The set of identifiers is
// snapshotted before the first visit; visit may unregister any entry,
// including the current one. Entries removed before their turn are skipped.
func (r *Registry) ForEach(visit func(id string, conn Connection)) {
	for _, id := range r.ids() {
		conn, ok := r.conns.Get(id)
		if !ok {
			continue
		}
		visit(id, conn)
	}
}

// Connections returns a snapshot of the registered connections
func (r *Registry) Connections() []Connection {
	connections := make([]Connection, 0, r.conns.Len())
	for pair := r.conns.Oldest(); pair != nil; pair = pair.Next() {
		connections = append(connections, pair.Value)
	}
	return connections
}

func (r *Registry) ids() []string {
	ids := make([]string, 0, r.conns.Len())
	for pair := r.conns.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}
