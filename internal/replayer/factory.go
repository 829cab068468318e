package replayer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"tracereplay/internal/packet"
)

// ErrNoImplementation is returned by Create when no constructor is registered.
var ErrNoImplementation = errors.New("no replayer implementation")

// Factory creates and destroys backends by tracer id. It holds constructors
// only; which backends are active is owned by the caller.
type Factory struct {
	mu    sync.RWMutex
	ctors map[packet.TracerID]Constructor
}

func NewFactory() *Factory {
	return &Factory{ctors: make(map[packet.TracerID]Constructor)}
}

// Register binds ctor to id, replacing any previous constructor.
func (f *Factory) Register(id packet.TracerID, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctor == nil {
		delete(f.ctors, id)
		return
	}
	f.ctors[id] = ctor
}

// Registered returns the ids that have a constructor, in ascending order.
func (f *Factory) Registered() []packet.TracerID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]packet.TracerID, 0, len(f.ctors))
	for id := range f.ctors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Create builds a new backend for id.
func (f *Factory) Create(id packet.TracerID) (Backend, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[id]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tracer %d (%s): %w", id, id, ErrNoImplementation)
	}
	b, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("tracer %d (%s): %w", id, id, err)
	}
	if b == nil {
		return nil, fmt.Errorf("tracer %d (%s): constructor returned nil backend", id, id)
	}
	return b, nil
}

// Destroy releases *handle and clears it, returning the backend's Close
// error. Safe on nil handles.
func (f *Factory) Destroy(handle *Backend) error {
	if handle == nil || *handle == nil {
		return nil
	}
	var err error
	if c, ok := (*handle).(io.Closer); ok {
		err = c.Close()
	}
	*handle = nil
	return err
}
