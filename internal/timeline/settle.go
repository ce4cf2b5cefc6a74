package timeline

import "time"

// DefaultSettleTTL is how long a settled override outlives its
// gesture, sized to exceed a store round-trip.
const DefaultSettleTTL = time.Second

type barKey struct {
	taskID    string
	subitemID string
}

type settledEntry struct {
	geom      Geometry
	expiresAt time.Time
}

// Overrides holds gesture-final geometry per bar until the
// authoritative store echoes the commit back. Writes are
// last-write-wins; expiry is enforced on read.
type Overrides struct {
	clock   func() time.Time
	ttl     time.Duration
	entries map[barKey]settledEntry
}

// NewOverrides constructs a new value for this package.
func NewOverrides(ttl time.Duration, clock func() time.Time) *Overrides {
	if ttl <= 0 {
		ttl = DefaultSettleTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Overrides{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[barKey]settledEntry),
	}
}

// Put records a bar's final geometry.
func (o *Overrides) Put(taskID, subitemID string, g Geometry) {
	o.entries[barKey{taskID, subitemID}] = settledEntry{
		geom:      g,
		expiresAt: o.clock().Add(o.ttl),
	}
}

// Get returns an unexpired override for a bar.
func (o *Overrides) Get(taskID, subitemID string) (Geometry, bool) {
	key := barKey{taskID, subitemID}
	entry, ok := o.entries[key]
	if !ok {
		return Geometry{}, false
	}
	if !o.clock().Before(entry.expiresAt) {
		delete(o.entries, key)
		return Geometry{}, false
	}
	return entry.geom, true
}

// Clear drops a bar's override early, typically once the renderer
// observes the store converging.
func (o *Overrides) Clear(taskID, subitemID string) {
	delete(o.entries, barKey{taskID, subitemID})
}

// Sweep drops every expired entry.
func (o *Overrides) Sweep() {
	now := o.clock()
	for key, entry := range o.entries {
		if !now.Before(entry.expiresAt) {
			delete(o.entries, key)
		}
	}
}
