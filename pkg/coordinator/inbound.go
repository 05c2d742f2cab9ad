package coordinator

import (
	"fmt"

	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// Sender is the subset of network.ServerManager/ClientManager the
// coordinator needs to relay or reply with packets (anti-echo fan-out,
// spec.md §4.5).
type Sender interface {
	QueueOutgoing(pkt network.OutboundPacket)
}

// OnMissingEntity is invoked when a snapshot names an entity id this
// peer has no local record of. The original protocol defines no explicit
// "request full state" packet; the host is expected to rely on the
// server's unconditional ENTITY_SPAWN broadcast instead (see
// DESIGN.md "Open Question decisions").
type OnMissingEntity func(id ecs.EntityID)

// Dispatch applies one inbound packet's effect to the ECS, per the
// handler table in spec.md §4.5. sender is used only for PLAYER_INPUT
// relay (server-side anti-echo) and ping/ack bookkeeping is left to
// pkg/network itself.
func (c *Coordinator) Dispatch(pkt network.InboundPacket, sender Sender) error {
	w := c.world
	switch pkt.Header.Type {
	case codec.TypeEntitySpawn:
		return c.handleEntitySpawn(pkt)
	case codec.TypeEntityDestroy:
		return c.handleEntityDestroy(pkt)
	case codec.TypeTransformSnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyTransform)
	case codec.TypeVelocitySnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyVelocity)
	case codec.TypeHealthSnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyHealth)
	case codec.TypeWeaponSnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyWeapon)
	case codec.TypeAnimationSnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyAnimation)
	case codec.TypeAISnapshot:
		return dispatchSnapshot(w, pkt.Payload, c.onMissingEntity, applyAI)
	case codec.TypeTransformSnapshotDelta:
		return dispatchDeltaSnapshot(w, pkt.Payload, c.onMissingEntity, applyTransform)
	case codec.TypeHealthSnapshotDelta:
		return dispatchDeltaSnapshot(w, pkt.Payload, c.onMissingEntity, applyHealth)
	case codec.TypeWeaponFire:
		return c.handleWeaponFire(pkt)
	case codec.TypeComponentAdd:
		return c.handleComponentAdd(pkt)
	case codec.TypeComponentRemove:
		return c.handleComponentRemove(pkt)
	case codec.TypePlayerIsReady:
		return c.handleReady(pkt, true)
	case codec.TypePlayerNotReady:
		return c.handleReady(pkt, false)
	case codec.TypeGameStart:
		return c.handleGameStart(pkt)
	case codec.TypeGameEnd:
		return c.handleGameEnd(pkt)
	case codec.TypeLevelStart:
		return c.handleLevelEvent(pkt, "level_start")
	case codec.TypeLevelComplete:
		return c.handleLevelEvent(pkt, "level_complete")
	case codec.TypePlayerInput:
		return c.handlePlayerInput(pkt, sender)
	default:
		return nil
	}
}

func (c *Coordinator) onMissingEntity(id ecs.EntityID) {
	c.mu.Lock()
	hook := c.OnMissingEntityHook
	c.mu.Unlock()
	if hook != nil {
		hook(id)
	}
}

func (c *Coordinator) handleEntitySpawn(pkt network.InboundPacket) error {
	_, body, err := codec.DecodePacket[codec.EntitySpawn](pkt.Payload)
	if err != nil {
		return err
	}
	id := ecs.EntityID(body.EntityID)
	if c.world.IsAlive(id) {
		return nil // already known, e.g. our own spawn echoed back
	}
	x, y := float64(body.PositionX), float64(body.PositionY)
	switch body.EntityType {
	case codec.EntityTypePlayer:
		isLocal := body.IsPlayable == 1
		var ownerPID uint32
		if isLocal {
			// Only the owning client's own copy needs a real
			// PlayerID: ProduceClientTick filters outbound
			// PLAYER_INPUT by InputComponent.PlayerID ==
			// c.localPlayerID, and the wire packet carries no
			// per-player id for remote players anyway.
			ownerPID = c.localPlayerID
		}
		_, err = c.SpawnPlayer(id, ownerPID, x, y, isLocal, PlayerSpawnOptions{})
	case codec.EntityTypeEnemy:
		_, err = c.SpawnEnemy(id, x, y, 0, ecs.AIPatrol)
	case codec.EntityTypeEnemyBoss:
		_, err = c.SpawnEnemy(id, x, y, 1, ecs.AIBossPhase1)
	default:
		err = c.world.CreateEntityWithID(id, "entity")
	}
	return err
}

func (c *Coordinator) handleEntityDestroy(pkt network.InboundPacket) error {
	_, body, err := codec.DecodePacket[codec.EntityDestroy](pkt.Payload)
	if err != nil {
		return err
	}
	id := ecs.EntityID(body.EntityID)
	if !c.world.IsAlive(id) {
		return nil
	}
	return c.world.DestroyEntity(id)
}

func (c *Coordinator) handleWeaponFire(pkt network.InboundPacket) error {
	_, body, err := codec.DecodePacket[codec.WeaponFire](pkt.Payload)
	if err != nil {
		return err
	}
	shooter := ecs.EntityID(body.ShooterID)
	dx, dy := float64(body.DirectionX)/1000.0, float64(body.DirectionY)/1000.0
	const weaponSpeed = 400.0 // units/second; see spec.md §4.5
	_, err = c.SpawnProjectile(shooter, wireToWeaponKind(body.WeaponType), float64(body.OriginX), float64(body.OriginY), dx, dy, weaponSpeed, 0)
	return err
}

func (c *Coordinator) handleComponentAdd(pkt network.InboundPacket) error {
	if len(pkt.Payload) < codec.HeaderSize+6 {
		return fmt.Errorf("component_add payload too short")
	}
	body := pkt.Payload[codec.HeaderSize:]
	id := ecs.EntityID(byteOrderUint32(body[0:4]))
	componentType := codec.ComponentType(body[4])
	if !c.world.IsAlive(id) {
		return nil
	}
	switch componentType {
	case codec.ComponentTransform:
		return ecs.AddComponent(c.world, id, ecs.Transform{Scale: 1})
	case codec.ComponentVelocity:
		return ecs.AddComponent(c.world, id, ecs.Velocity{})
	case codec.ComponentHealth:
		return ecs.AddComponent(c.world, id, ecs.Health{})
	case codec.ComponentWeapon:
		return ecs.AddComponent(c.world, id, ecs.Weapon{})
	case codec.ComponentAI:
		return ecs.AddComponent(c.world, id, ecs.AI{})
	default:
		return nil
	}
}

func (c *Coordinator) handleComponentRemove(pkt network.InboundPacket) error {
	if len(pkt.Payload) < codec.HeaderSize+5 {
		return fmt.Errorf("component_remove payload too short")
	}
	body := pkt.Payload[codec.HeaderSize:]
	id := ecs.EntityID(byteOrderUint32(body[0:4]))
	componentType := codec.ComponentType(body[4])
	if !c.world.IsAlive(id) {
		return nil
	}
	switch componentType {
	case codec.ComponentTransform:
		return ecs.RemoveComponent[ecs.Transform](c.world, id)
	case codec.ComponentVelocity:
		return ecs.RemoveComponent[ecs.Velocity](c.world, id)
	case codec.ComponentHealth:
		return ecs.RemoveComponent[ecs.Health](c.world, id)
	case codec.ComponentWeapon:
		return ecs.RemoveComponent[ecs.Weapon](c.world, id)
	case codec.ComponentAI:
		return ecs.RemoveComponent[ecs.AI](c.world, id)
	default:
		return nil
	}
}

func (c *Coordinator) handleReady(pkt network.InboundPacket, ready bool) error {
	var playerID uint32
	if ready {
		_, body, err := codec.DecodePacket[codec.PlayerIsReady](pkt.Payload)
		if err != nil {
			return err
		}
		playerID = body.PlayerID
	} else {
		_, body, err := codec.DecodePacket[codec.PlayerNotReady](pkt.Payload)
		if err != nil {
			return err
		}
		playerID = body.PlayerID
	}
	c.mu.Lock()
	c.readyPlayers[playerID] = ready
	cb := c.OnReady
	c.mu.Unlock()
	if cb != nil {
		cb(playerID, ready)
	}
	return nil
}

func (c *Coordinator) handleGameStart(pkt network.InboundPacket) error {
	_, _, err := codec.DecodePacket[codec.GameStart](pkt.Payload)
	if err != nil {
		return err
	}
	c.setRunning(true)
	c.notifyGameState("game_start")
	return nil
}

func (c *Coordinator) handleGameEnd(pkt network.InboundPacket) error {
	_, _, err := codec.DecodePacket[codec.GameEnd](pkt.Payload)
	if err != nil {
		return err
	}
	c.setRunning(false)
	c.notifyGameState("game_end")
	return nil
}

func (c *Coordinator) handleLevelEvent(pkt network.InboundPacket, event string) error {
	var err error
	switch event {
	case "level_start":
		_, _, err = codec.DecodePacket[codec.LevelStart](pkt.Payload)
	case "level_complete":
		_, _, err = codec.DecodePacket[codec.LevelComplete](pkt.Payload)
	}
	if err != nil {
		return err
	}
	c.notifyGameState(event)
	return nil
}

func (c *Coordinator) handlePlayerInput(pkt network.InboundPacket, sender Sender) error {
	_, body, err := codec.DecodePacket[codec.PlayerInput](pkt.Payload)
	if err != nil {
		return err
	}
	if c.IsServer {
		if err := c.applyPlayerInputToWorld(body); err != nil {
			return err
		}
		if sender != nil {
			sender.QueueOutgoing(network.OutboundPacket{
				Payload:         pkt.Payload,
				Broadcast:       true,
				HasExceptClient: true,
				ExceptClientID:  pkt.ClientID,
			})
		}
	}
	return nil
}

func (c *Coordinator) applyPlayerInputToWorld(body codec.PlayerInput) error {
	store, err := ecs.Store[ecs.InputComponent](c.world)
	if err != nil {
		return err
	}
	for _, id := range store.Entities() {
		in, _ := store.Get(id)
		if in.PlayerID != body.PlayerID {
			continue
		}
		in.Actions = decodeInputFlags(body.InputState)
		in.LastReportX = float64(body.AimX)
		in.LastReportY = float64(body.AimY)
		store.Set(id, in)
		return nil
	}
	return nil
}

func decodeInputFlags(state uint16) map[ecs.InputAction]bool {
	flags := codec.InputFlag(state)
	m := make(map[ecs.InputAction]bool, 7)
	m[ecs.ActionMoveUp] = flags&codec.InputMoveUp != 0
	m[ecs.ActionMoveDown] = flags&codec.InputMoveDown != 0
	m[ecs.ActionMoveLeft] = flags&codec.InputMoveLeft != 0
	m[ecs.ActionMoveRight] = flags&codec.InputMoveRight != 0
	m[ecs.ActionFirePrimary] = flags&codec.InputFirePrimary != 0
	m[ecs.ActionFireSecondary] = flags&codec.InputFireSecondary != 0
	m[ecs.ActionSpecial] = flags&codec.InputActionSpecial != 0
	return m
}

func (c *Coordinator) setRunning(running bool) {
	store, err := ecs.Store[ecs.GameConfig](c.world)
	if err != nil {
		return
	}
	for _, id := range store.Entities() {
		cfg, _ := store.Get(id)
		cfg.Running = running
		store.Set(id, cfg)
	}
}

func (c *Coordinator) notifyGameState(event string) {
	c.mu.Lock()
	cb := c.OnGameState
	c.mu.Unlock()
	if cb != nil {
		cb(event)
	}
}

func byteOrderUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// dispatchSnapshot decodes a per-component snapshot packet and applies
// apply to every entity present locally; entities referenced in the
// snapshot that don't exist locally invoke missing instead.
func dispatchSnapshot[T any](w *ecs.World, payload []byte, missing OnMissingEntity, apply func(*ecs.World, ecs.EntityID, T) error) error {
	_, _, entries, err := codec.DecodeSnapshot[T](payload)
	if err != nil {
		return err
	}
	for _, e := range entries {
		id := ecs.EntityID(e.EntityID)
		if !w.IsAlive(id) {
			missing(id)
			continue
		}
		if err := apply(w, id, e.Data); err != nil {
			return err
		}
	}
	return nil
}

func dispatchDeltaSnapshot[T any](w *ecs.World, payload []byte, missing OnMissingEntity, apply func(*ecs.World, ecs.EntityID, T) error) error {
	_, _, _, entries, err := codec.DecodeDeltaSnapshot[T](payload)
	if err != nil {
		return err
	}
	for _, e := range entries {
		id := ecs.EntityID(e.EntityID)
		if !w.IsAlive(id) {
			missing(id)
			continue
		}
		if err := apply(w, id, e.Data); err != nil {
			return err
		}
	}
	return nil
}

func applyTransform(w *ecs.World, id ecs.EntityID, d codec.TransformData) error {
	return ecs.AddComponent(w, id, ecs.Transform{
		X:        float64(d.X),
		Y:        float64(d.Y),
		Rotation: float64(d.Rotation) * 360.0 / 65535.0,
		Scale:    float64(d.Scale) / 1000.0,
	})
}

func applyVelocity(w *ecs.World, id ecs.EntityID, d codec.VelocityData) error {
	return ecs.AddComponent(w, id, ecs.Velocity{VX: float64(d.VX), VY: float64(d.VY)})
}

func applyHealth(w *ecs.World, id ecs.EntityID, d codec.HealthData) error {
	return ecs.AddComponent(w, id, ecs.Health{Current: int(d.CurrentHealth), Max: int(d.MaxHealth)})
}

func applyWeapon(w *ecs.World, id ecs.EntityID, d codec.WeaponData) error {
	existing, _ := ecs.GetComponent[ecs.Weapon](w, id)
	existing.ProjectileOf = wireToWeaponKind(codec.WeaponType(d.WeaponType))
	return ecs.AddComponent(w, id, existing)
}

func applyAnimation(w *ecs.World, id ecs.EntityID, d codec.AnimationData) error {
	return ecs.AddComponent(w, id, ecs.Animation{
		AnimationID:   d.AnimationID,
		FrameIndex:    d.FrameIndex,
		FrameDuration: d.FrameDuration,
		LoopMode:      d.LoopMode,
	})
}

func applyAI(w *ecs.World, id ecs.EntityID, d codec.AIData) error {
	return ecs.AddComponent(w, id, ecs.AI{
		Behavior:        ecs.AIBehavior(d.BehaviorType),
		TargetEntity:    ecs.EntityID(d.TargetEntityID),
		InternalClockMS: int64(d.StateTimer),
	})
}
