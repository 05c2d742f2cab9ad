package ecs

// System is a function over entities matching a signature, with
// lifecycle hooks invoked by the World around the registration and
// per-tick update boundaries.
type System interface {
	// Name identifies the system for duplicate-registration checks and
	// logging; it is not required to be a type name.
	Name() string

	// OnCreate runs once, right after registration.
	OnCreate(w *World)

	// OnStartRunning runs when the world transitions to running (once
	// per Start call).
	OnStartRunning(w *World)

	// OnUpdate runs once per tick while the world is running.
	OnUpdate(w *World, dt float64)

	// OnStopRunning runs when the world transitions out of running.
	OnStopRunning(w *World)

	// OnDestroy runs once when the system is removed or the world is
	// torn down.
	OnDestroy(w *World)
}

// BaseSystem gives System implementations no-op defaults for the hooks
// they don't care about; embed it and override only OnUpdate plus
// whichever hooks matter.
type BaseSystem struct{}

func (BaseSystem) OnCreate(*World)         {}
func (BaseSystem) OnStartRunning(*World)   {}
func (BaseSystem) OnStopRunning(*World)    {}
func (BaseSystem) OnDestroy(*World)        {}

// registeredSystem pairs a System with its required signature and the
// live set of entities currently matching it.
type registeredSystem struct {
	system    System
	signature Signature
	members   map[EntityID]struct{}
}

func (r *registeredSystem) add(id EntityID) {
	if r.members == nil {
		r.members = make(map[EntityID]struct{})
	}
	r.members[id] = struct{}{}
}

func (r *registeredSystem) remove(id EntityID) {
	delete(r.members, id)
}

func (r *registeredSystem) has(id EntityID) bool {
	_, ok := r.members[id]
	return ok
}

// Members returns the entity ids currently matching this system's
// signature. The caller must not retain the slice across a tick boundary.
func (r *registeredSystem) Members() []EntityID {
	ids := make([]EntityID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}
