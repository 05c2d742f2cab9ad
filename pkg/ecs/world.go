package ecs

import (
	"reflect"
	"sync/atomic"
)

// World owns entity bookkeeping, typed component stores and the system
// registry. All mutation happens from a single goroutine (the game loop's
// main thread per spec.md §5); World itself holds no locks.
type World struct {
	local     *idAllocator
	networked *idAllocator

	localLive     map[EntityID]struct{}
	networkedLive map[EntityID]struct{}

	names      map[EntityID]string
	signatures map[EntityID]Signature

	componentTypes map[reflect.Type]ComponentTypeID
	nextTypeID     ComponentTypeID
	stores         map[ComponentTypeID]componentStore
	typedStores    map[ComponentTypeID]any

	systems     []*registeredSystem
	systemNames map[string]int // name -> index into systems

	running atomic.Bool
}

// NewWorld constructs an empty World ready for component registration and
// system registration.
func NewWorld() *World {
	return &World{
		local:          newIDAllocator(localIDFloor, localIDCeiling),
		networked:      newIDAllocator(networkedIDFloor, 0),
		localLive:      make(map[EntityID]struct{}),
		networkedLive:  make(map[EntityID]struct{}),
		names:          make(map[EntityID]string),
		signatures:     make(map[EntityID]Signature),
		componentTypes: make(map[reflect.Type]ComponentTypeID),
		stores:         make(map[ComponentTypeID]componentStore),
		typedStores:    make(map[ComponentTypeID]any),
		systemNames:    make(map[string]int),
	}
}

// RegisterComponent assigns T a process-wide stable ComponentTypeID,
// idempotently: calling it again for the same T returns the same id and
// does not reset the store.
func RegisterComponent[T any](w *World) ComponentTypeID {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if id, ok := w.componentTypes[rt]; ok {
		return id
	}
	id := w.nextTypeID
	w.nextTypeID++
	w.componentTypes[rt] = id
	store := newComponentStore[T]()
	w.stores[id] = store
	w.typedStores[id] = store
	return id
}

// ComponentTypeOf returns the id a type was registered under, if any.
func ComponentTypeOf[T any](w *World) (ComponentTypeID, bool) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	id, ok := w.componentTypes[rt]
	return id, ok
}

func storeOf[T any](w *World) (*ComponentStore[T], ComponentTypeID, error) {
	id, ok := ComponentTypeOf[T](w)
	if !ok {
		return nil, 0, errComponentAccess(id)
	}
	s, ok := w.typedStores[id].(*ComponentStore[T])
	if !ok {
		return nil, 0, errComponentAccess(id)
	}
	return s, id, nil
}

// Store exposes the typed component store for T, for systems that need to
// iterate it directly (e.g. movement integrating all Velocity/Transform
// pairs). Fails with EcsComponentAccessError if T was never registered.
func Store[T any](w *World) (*ComponentStore[T], error) {
	s, _, err := storeOf[T](w)
	return s, err
}

// CreateEntity allocates a new entity id in the given category and
// assigns it name for diagnostics. category controls whether the id comes
// from the local or networked id space.
func (w *World) CreateEntity(name string, category Category) EntityID {
	var id EntityID
	switch category {
	case CategoryNetworked:
		id = w.networked.allocate(w.networkedLive)
		w.networkedLive[id] = struct{}{}
	default:
		id = w.local.allocate(w.localLive)
		w.localLive[id] = struct{}{}
	}
	w.names[id] = name
	w.signatures[id] = 0
	return id
}

// CreateEntityWithID creates a networked entity with a preassigned id
// (used when a spawn packet names the id). Fails with EcsInvalidEntity if
// the id is already live.
func (w *World) CreateEntityWithID(id EntityID, name string) error {
	if _, alive := w.networkedLive[id]; alive {
		return errInvalidEntity(id)
	}
	w.networked.reserve(id)
	w.networkedLive[id] = struct{}{}
	w.names[id] = name
	w.signatures[id] = 0
	return nil
}

// IsAlive reports whether id names a currently live entity, in either id
// space.
func (w *World) IsAlive(id EntityID) bool {
	if _, ok := w.localLive[id]; ok {
		return true
	}
	_, ok := w.networkedLive[id]
	return ok
}

// IsNetworked reports whether id belongs to the networked id space and is
// currently live.
func (w *World) IsNetworked(id EntityID) bool {
	_, ok := w.networkedLive[id]
	return ok
}

// DestroyEntity runs every component type's eraser for id, removes it
// from every system's membership set, and returns the id to its
// category's free list. Fails with EcsInvalidEntity if id is not alive.
func (w *World) DestroyEntity(id EntityID) error {
	local := false
	if _, ok := w.localLive[id]; ok {
		local = true
	} else if _, ok := w.networkedLive[id]; !ok {
		return errInvalidEntity(id)
	}

	for _, store := range w.stores {
		store.erase(id)
	}
	for _, sys := range w.systems {
		sys.remove(id)
	}
	delete(w.names, id)
	delete(w.signatures, id)

	if local {
		delete(w.localLive, id)
		w.local.release(id)
	} else {
		delete(w.networkedLive, id)
		w.networked.release(id)
	}
	return nil
}

// Name returns the diagnostic name given to id at creation time.
func (w *World) Name(id EntityID) string {
	return w.names[id]
}

// Signature returns the current component signature of id.
func (w *World) Signature(id EntityID) Signature {
	return w.signatures[id]
}

// AddComponent attaches value of type T to id, registering T first if
// needed is the caller's responsibility (RegisterComponent must have been
// called). Synchronously notifies the system registry so membership
// updates are visible before the next tick.
func AddComponent[T any](w *World, id EntityID, value T) error {
	if !w.IsAlive(id) {
		return errInvalidEntity(id)
	}
	store, typeID, err := storeOf[T](w)
	if err != nil {
		return err
	}
	store.Set(id, value)
	w.signatures[id] = w.signatures[id].Set(typeID)
	w.onSignatureChanged(id)
	return nil
}

// RemoveComponent detaches T from id, if present, and notifies the system
// registry.
func RemoveComponent[T any](w *World, id EntityID) error {
	if !w.IsAlive(id) {
		return errInvalidEntity(id)
	}
	store, typeID, err := storeOf[T](w)
	if err != nil {
		return err
	}
	store.erase(id)
	w.signatures[id] = w.signatures[id].Clear(typeID)
	w.onSignatureChanged(id)
	return nil
}

// GetComponent returns id's value of type T.
func GetComponent[T any](w *World, id EntityID) (T, error) {
	store, _, err := storeOf[T](w)
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := store.Get(id)
	if !ok {
		var zero T
		return zero, errComponentAccess(0)
	}
	return v, nil
}

// HasComponent reports whether id currently carries a component of type T.
func HasComponent[T any](w *World, id EntityID) bool {
	store, _, err := storeOf[T](w)
	if err != nil {
		return false
	}
	return store.has(id)
}

func (w *World) onSignatureChanged(id EntityID) {
	sig := w.signatures[id]
	for _, sys := range w.systems {
		matches := sig.Matches(sys.signature)
		if matches {
			sys.add(id)
		} else {
			sys.remove(id)
		}
	}
}

// AddSystem registers sys with the given required signature. Fails with
// EcsDuplicateSystem if a system with the same Name() is already
// registered.
func (w *World) AddSystem(sys System, required Signature) error {
	if _, exists := w.systemNames[sys.Name()]; exists {
		return errDuplicateSystem(sys.Name())
	}
	rs := &registeredSystem{system: sys, signature: required, members: make(map[EntityID]struct{})}
	for id, sig := range w.signatures {
		if sig.Matches(required) {
			rs.add(id)
		}
	}
	w.systemNames[sys.Name()] = len(w.systems)
	w.systems = append(w.systems, rs)
	sys.OnCreate(w)
	return nil
}

// System returns the registered system named name.
func (w *World) System(name string) (System, error) {
	idx, ok := w.systemNames[name]
	if !ok {
		return nil, errInvalidSystem(name)
	}
	return w.systems[idx].system, nil
}

// SystemMembers returns the current member ids of the system named name.
func (w *World) SystemMembers(name string) ([]EntityID, error) {
	idx, ok := w.systemNames[name]
	if !ok {
		return nil, errInvalidSystem(name)
	}
	return w.systems[idx].Members(), nil
}

// Start transitions the world to running, invoking OnStartRunning on every
// registered system in registration order.
func (w *World) Start() {
	w.running.Store(true)
	for _, sys := range w.systems {
		sys.system.OnStartRunning(w)
	}
}

// Stop transitions the world out of running, invoking OnStopRunning on
// every registered system in registration order.
func (w *World) Stop() {
	for _, sys := range w.systems {
		sys.system.OnStopRunning(w)
	}
	w.running.Store(false)
}

// Running reports whether Start has been called without a matching Stop.
func (w *World) Running() bool {
	return w.running.Load()
}

// Update steps every registered system once, in registration order, with
// the given delta time. Systems are expected to catch their own
// per-entity errors at the entity boundary (spec.md §7); Update itself
// does not recover panics.
func (w *World) Update(dt float64) {
	for _, sys := range w.systems {
		sys.system.OnUpdate(w, dt)
	}
}

// Destroy invokes OnDestroy on every system, in registration order. Call
// once during process shutdown.
func (w *World) Destroy() {
	for _, sys := range w.systems {
		sys.system.OnDestroy(w)
	}
}
