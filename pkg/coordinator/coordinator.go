package coordinator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// ReadyCallback notifies the host application of a ready-check change
// (spec.md §4.5: PLAYER_IS_READY/NOT_READY).
type ReadyCallback func(playerID uint32, ready bool)

// GameStateCallback notifies the host application of a match lifecycle
// transition (GAME_START/END, LEVEL_START/COMPLETE).
type GameStateCallback func(event string)

// Coordinator is the ECS<->protocol bridge of spec.md §4.5. One instance
// is created per World; IsServer distinguishes server-side authoritative
// dispatch from client-side prediction-friendly dispatch.
type Coordinator struct {
	world *ecs.World
	log   *logrus.Logger

	IsServer bool
	Rates    SnapshotRates

	mu                sync.Mutex
	pendingWeaponFire []weaponFireEvent
	broadcastedEntity map[ecs.EntityID]struct{}
	destroyedEntity   []destroyEvent
	pendingCatchup    []uint32 // client ids awaiting a full ENTITY_SPAWN catch-up

	readyPlayers map[uint32]bool
	OnReady      ReadyCallback
	OnGameState  GameStateCallback

	// playerEntities maps a connection slot's clientID to the player
	// entity HandleAccept spawned for it, so HandleDisconnect can tear
	// it down (connection.go).
	playerEntities map[uint32]ecs.EntityID

	// OnMissingEntityHook is invoked when an inbound snapshot names an
	// entity this peer has no local record of (see inbound.go).
	OnMissingEntityHook OnMissingEntity

	localPlayerID uint32 // client-side only: the owning player's id
}

type weaponFireEvent struct {
	ShooterID  ecs.EntityID
	ProjectileID ecs.EntityID
	Kind       ecs.WeaponKind
	OriginX, OriginY     float64
	DirectionX, DirectionY float64
}

type destroyEvent struct {
	EntityID ecs.EntityID
	Reason   codec.DestroyReason
	FinalX, FinalY float64
}

// New builds a Coordinator over world. Core components are registered
// here so both server and client agree on ComponentTypeID assignment
// order (required for pkg/ecs.Signature bits to line up, spec.md §3).
func New(world *ecs.World, isServer bool, log *logrus.Logger) *Coordinator {
	registerCoreComponents(world)
	return &Coordinator{
		world:             world,
		log:               log,
		IsServer:          isServer,
		Rates:             DefaultSnapshotRates(),
		broadcastedEntity: make(map[ecs.EntityID]struct{}),
		readyPlayers:      make(map[uint32]bool),
		playerEntities:    make(map[uint32]ecs.EntityID),
	}
}

// SetLocalPlayer records which player id this coordinator's process
// controls (client-side; used to filter outbound PLAYER_INPUT and to
// take ownership of an inbound ENTITY_SPAWN that has is_playable set).
func (c *Coordinator) SetLocalPlayer(playerID uint32) {
	c.localPlayerID = playerID
}

// LocalPlayerID returns the id set by SetLocalPlayer, so a rendering or
// input collaborator can find its own player's entity without reaching
// into Coordinator internals.
func (c *Coordinator) LocalPlayerID() uint32 {
	return c.localPlayerID
}

func registerCoreComponents(w *ecs.World) {
	ecs.RegisterComponent[ecs.Transform](w)
	ecs.RegisterComponent[ecs.Velocity](w)
	ecs.RegisterComponent[ecs.Health](w)
	ecs.RegisterComponent[ecs.Weapon](w)
	ecs.RegisterComponent[ecs.AI](w)
	ecs.RegisterComponent[ecs.Force](w)
	ecs.RegisterComponent[ecs.HitBox](w)
	ecs.RegisterComponent[ecs.Sprite](w)
	ecs.RegisterComponent[ecs.Animation](w)
	ecs.RegisterComponent[ecs.Powerup](w)
	ecs.RegisterComponent[ecs.Score](w)
	ecs.RegisterComponent[ecs.InputComponent](w)
	ecs.RegisterComponent[ecs.NetworkID](w)
	ecs.RegisterComponent[ecs.Lifetime](w)
	ecs.RegisterComponent[ecs.Playable](w)
	ecs.RegisterComponent[ecs.Enemy](w)
	ecs.RegisterComponent[ecs.Projectile](w)
	ecs.RegisterComponent[ecs.Team](w)
	ecs.RegisterComponent[ecs.DeadPlayer](w)
	ecs.RegisterComponent[ecs.Level](w)
	ecs.RegisterComponent[ecs.GameConfig](w)
}

// PlayerSpawnOptions controls optional render-facing components on a
// newly constructed player entity.
type PlayerSpawnOptions struct {
	WithRenderComponents bool
	SpriteID             uint16
	AnimationID          uint16
}

// SpawnPlayer builds a player entity per spec.md §4.5: NetworkID,
// Transform, Velocity, Health, HitBox, Weapon, InputComponent,
// Team(PLAYER), and Playable on the owning client's copy. networkedID is
// caller-supplied because it has to match across peers: a client applying
// an inbound ENTITY_SPAWN packet uses the id the packet names.
func (c *Coordinator) SpawnPlayer(networkedID ecs.EntityID, ownerPID uint32, x, y float64, isLocal bool, opts PlayerSpawnOptions) (ecs.EntityID, error) {
	if err := c.world.CreateEntityWithID(networkedID, "player"); err != nil {
		return ecs.InvalidEntityID, err
	}
	return c.attachPlayerComponents(networkedID, ownerPID, x, y, isLocal, opts)
}

// SpawnLocalPlayer is SpawnPlayer's server-side counterpart: it allocates
// a fresh networked id itself (spec.md §4.4's connection handshake has no
// prior id for a newly-accepted client to reuse) instead of taking one.
// Call this from a ConnectionHandler.HandleAccept implementation; the
// resulting id is what the server then broadcasts via ENTITY_SPAWN.
// isLocal is always true here: every player entity the server spawns is
// owned and controlled by the client named by ownerPID, as opposed to an
// AI-controlled enemy. It does NOT mean every peer should see
// is_playable=1 for this entity - outbound.go derives that per recipient
// by comparing NetworkID.OwnerPID against the packet's destination.
func (c *Coordinator) SpawnLocalPlayer(ownerPID uint32, x, y float64, opts PlayerSpawnOptions) (ecs.EntityID, error) {
	id := c.world.CreateEntity("player", ecs.CategoryNetworked)
	return c.attachPlayerComponents(id, ownerPID, x, y, true, opts)
}

func (c *Coordinator) attachPlayerComponents(id ecs.EntityID, ownerPID uint32, x, y float64, isLocal bool, opts PlayerSpawnOptions) (ecs.EntityID, error) {
	w := c.world
	if err := ecs.AddComponent(w, id, ecs.NetworkID{ID: id, IsLocal: isLocal, OwnerPID: ownerPID}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Transform{X: x, Y: y, Scale: 1}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Velocity{}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Health{Current: 100, Max: 100}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.HitBox{Width: 32, Height: 16, Layer: 1, Mask: 0xFE}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Weapon{FireRateMS: 250, ProjectileOf: ecs.WeaponBasic}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.InputComponent{PlayerID: ownerPID, Actions: make(map[ecs.InputAction]bool)}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Team(ecs.TeamPlayer)); err != nil {
		return id, err
	}
	if isLocal {
		if err := ecs.AddComponent(w, id, ecs.Playable{}); err != nil {
			return id, err
		}
	}
	if opts.WithRenderComponents {
		if err := ecs.AddComponent(w, id, ecs.Sprite{SpriteID: opts.SpriteID, A: 255}); err != nil {
			return id, err
		}
		if err := ecs.AddComponent(w, id, ecs.Animation{AnimationID: opts.AnimationID}); err != nil {
			return id, err
		}
	}
	return id, nil
}

// SpawnEnemy builds an AI-controlled entity.
func (c *Coordinator) SpawnEnemy(networkedID ecs.EntityID, x, y float64, bossTier int, behavior ecs.AIBehavior) (ecs.EntityID, error) {
	w := c.world
	if err := w.CreateEntityWithID(networkedID, "enemy"); err != nil {
		return ecs.InvalidEntityID, err
	}
	id := networkedID
	if err := ecs.AddComponent(w, id, ecs.NetworkID{ID: id}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Transform{X: x, Y: y, Scale: 1}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Velocity{}); err != nil {
		return id, err
	}
	health := 20 + bossTier*200
	if err := ecs.AddComponent(w, id, ecs.Health{Current: health, Max: health}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.HitBox{Width: 24, Height: 24, Layer: 2, Mask: 0xFD}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Enemy{BossTier: bossTier}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.AI{Behavior: behavior, DetectionRange: 400, AggroRange: 250}); err != nil {
		return id, err
	}
	team := ecs.TeamEnemy
	if bossTier > 0 {
		team |= ecs.TeamBoss
	}
	if err := ecs.AddComponent(w, id, team); err != nil {
		return id, err
	}
	return id, nil
}

// SpawnProjectile builds a projectile entity. Per spec.md §3's invariant,
// projectiles never carry NetworkID: every peer reconstructs them locally
// from WEAPON_FIRE events rather than replicating them as networked
// entities.
func (c *Coordinator) SpawnProjectile(shooter ecs.EntityID, kind ecs.WeaponKind, x, y, dx, dy, speed float64, nowMS int64) (ecs.EntityID, error) {
	w := c.world
	id := w.CreateEntity("projectile", ecs.CategoryLocal)
	if err := ecs.AddComponent(w, id, ecs.Transform{X: x, Y: y, Scale: 1}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Velocity{VX: dx * speed, VY: dy * speed}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Projectile{ShooterID: shooter, Kind: kind, SpawnedAt: nowMS}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.HitBox{Width: 8, Height: 4, Layer: 4, Mask: 0xFB}); err != nil {
		return id, err
	}
	if err := ecs.AddComponent(w, id, ecs.Lifetime{RemainingMS: 4000}); err != nil {
		return id, err
	}
	return id, nil
}

// SpawnScore attaches a Score component to an existing player entity
// (spec.md §4.5's "score" conceptual object lives alongside the player,
// not as a separate entity).
func (c *Coordinator) SpawnScore(playerEntity ecs.EntityID, playerID uint32) error {
	return ecs.AddComponent(c.world, playerEntity, ecs.Score{PlayerID: playerID})
}

// QueueWeaponFire records a shot for the next outbound tick, per spec.md
// §4.6: "a weapon fire is queued via queue_weapon_fire, not by writing to
// the socket directly".
func (c *Coordinator) QueueWeaponFire(shooter, projectile ecs.EntityID, kind ecs.WeaponKind, originX, originY, dirX, dirY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingWeaponFire = append(c.pendingWeaponFire, weaponFireEvent{
		ShooterID: shooter, ProjectileID: projectile, Kind: kind,
		OriginX: originX, OriginY: originY, DirectionX: dirX, DirectionY: dirY,
	})
}

// QueueDestroy records an entity to be destroyed and reported via
// ENTITY_DESTROY on the next outbound tick.
func (c *Coordinator) QueueDestroy(id ecs.EntityID, reason codec.DestroyReason, finalX, finalY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyedEntity = append(c.destroyedEntity, destroyEvent{EntityID: id, Reason: reason, FinalX: finalX, FinalY: finalY})
}

// QueueCatchupSpawns marks clientID as having just joined, so the next
// ProduceServerTick call sends it an ENTITY_SPAWN for every already-known
// networked entity (spec.md §6's handshake: "it sends the new player an
// ENTITY_SPAWN per existing player"), independent of broadcastedEntity's
// global one-shot dedup.
func (c *Coordinator) QueueCatchupSpawns(clientID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingCatchup = append(c.pendingCatchup, clientID)
}

// IsReady reports a player's last-known ready-check state.
func (c *Coordinator) IsReady(playerID uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyPlayers[playerID]
}

func weaponKindToWire(k ecs.WeaponKind) codec.WeaponType {
	return codec.WeaponType(k)
}

func wireToWeaponKind(t codec.WeaponType) ecs.WeaponKind {
	return ecs.WeaponKind(t)
}
