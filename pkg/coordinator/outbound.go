package coordinator

import (
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// ProduceServerTick builds this tick's outbound batch per spec.md §4.5:
// per-component snapshots for every networked entity, WEAPON_FIRE for
// every queued shot, ENTITY_SPAWN for newly broadcast entities, and
// ENTITY_DESTROY for entities destroyed this tick.
func (c *Coordinator) ProduceServerTick(worldTick uint32, nowMS uint32) []network.OutboundPacket {
	var out []network.OutboundPacket
	out = append(out, c.produceSnapshots(worldTick, nowMS)...)
	out = append(out, c.drainWeaponFire(nowMS)...)
	out = append(out, c.produceNewEntitySpawns(nowMS)...)
	out = append(out, c.produceCatchupSpawns(nowMS)...)
	out = append(out, c.drainDestroyedEntities(nowMS)...)
	return out
}

// ProduceClientTick builds the client's outbound batch: only PLAYER_INPUT
// for the local player (spec.md §4.5 "On the client, the coordinator
// emits only PLAYER_INPUT for the local player and control packets").
func (c *Coordinator) ProduceClientTick(seq uint32, nowMS uint32) ([]network.OutboundPacket, error) {
	store, err := ecs.Store[ecs.InputComponent](c.world)
	if err != nil {
		return nil, err
	}
	var out []network.OutboundPacket
	for _, id := range store.Entities() {
		in, _ := store.Get(id)
		if in.PlayerID != c.localPlayerID {
			continue
		}
		buf, err := codec.EncodePacket(codec.TypePlayerInput, 0, seq, nowMS, codec.PlayerInput{
			PlayerID:   in.PlayerID,
			InputState: uint16(encodeInputFlags(in.Actions)),
			AimX:       uint16(in.LastReportX),
			AimY:       uint16(in.LastReportY),
		})
		if err != nil {
			return out, err
		}
		out = append(out, network.OutboundPacket{Payload: buf})
	}
	return out, nil
}

func encodeInputFlags(actions map[ecs.InputAction]bool) codec.InputFlag {
	var f codec.InputFlag
	if actions[ecs.ActionMoveUp] {
		f |= codec.InputMoveUp
	}
	if actions[ecs.ActionMoveDown] {
		f |= codec.InputMoveDown
	}
	if actions[ecs.ActionMoveLeft] {
		f |= codec.InputMoveLeft
	}
	if actions[ecs.ActionMoveRight] {
		f |= codec.InputMoveRight
	}
	if actions[ecs.ActionFirePrimary] {
		f |= codec.InputFirePrimary
	}
	if actions[ecs.ActionFireSecondary] {
		f |= codec.InputFireSecondary
	}
	if actions[ecs.ActionSpecial] {
		f |= codec.InputActionSpecial
	}
	return f
}

// produceSnapshots batches one per-component snapshot packet per kind
// whose configured rate is due this tick (spec.md §4.5/§9 snapshot
// frequency Open Question). Each component kind needs its own builder
// since Go generics can't range over a list of distinct component types
// at this boundary. Only Transform, Velocity, Health, Weapon and AI have
// builders: no ANIMATION_SNAPSHOT is emitted, and the Animation entry in
// SnapshotRates is not consulted.
func (c *Coordinator) produceSnapshots(worldTick, nowMS uint32) []network.OutboundPacket {
	var out []network.OutboundPacket
	type builder func(*ecs.World, uint32, uint32) (network.OutboundPacket, bool)
	candidates := []struct {
		component codec.ComponentType
		build     builder
	}{
		{codec.ComponentTransform, buildTransformSnapshot},
		{codec.ComponentVelocity, buildVelocitySnapshot},
		{codec.ComponentHealth, buildHealthSnapshot},
		{codec.ComponentWeapon, buildWeaponSnapshot},
		{codec.ComponentAI, buildAISnapshot},
	}
	for _, cand := range candidates {
		if !c.Rates.due(cand.component, worldTick) {
			continue
		}
		if pkt, ok := cand.build(c.world, worldTick, nowMS); ok {
			out = append(out, pkt)
		}
	}
	return out
}

func buildTransformSnapshot(w *ecs.World, worldTick, nowMS uint32) (network.OutboundPacket, bool) {
	store, err := ecs.Store[ecs.Transform](w)
	if err != nil || store.Len() == 0 {
		return network.OutboundPacket{}, false
	}
	var entries []codec.SnapshotEntry[codec.TransformData]
	store.Each(func(id ecs.EntityID, t ecs.Transform) {
		if !w.IsNetworked(id) {
			return
		}
		entries = append(entries, codec.SnapshotEntry[codec.TransformData]{
			EntityID: uint32(id),
			Data: codec.TransformData{
				X:        int16(t.X),
				Y:        int16(t.Y),
				Rotation: uint16(t.Rotation * 65535.0 / 360.0),
				Scale:    uint16(t.Scale * 1000.0),
			},
		})
	})
	if len(entries) == 0 {
		return network.OutboundPacket{}, false
	}
	buf, err := codec.EncodeSnapshot(codec.TypeTransformSnapshot, 0, nowMS, worldTick, entries)
	if err != nil {
		return network.OutboundPacket{}, false
	}
	return network.OutboundPacket{Payload: buf, Broadcast: true}, true
}

func buildVelocitySnapshot(w *ecs.World, worldTick, nowMS uint32) (network.OutboundPacket, bool) {
	store, err := ecs.Store[ecs.Velocity](w)
	if err != nil || store.Len() == 0 {
		return network.OutboundPacket{}, false
	}
	var entries []codec.SnapshotEntry[codec.VelocityData]
	store.Each(func(id ecs.EntityID, v ecs.Velocity) {
		if !w.IsNetworked(id) {
			return
		}
		entries = append(entries, codec.SnapshotEntry[codec.VelocityData]{
			EntityID: uint32(id),
			Data:     codec.VelocityData{VX: int16(v.VX), VY: int16(v.VY)},
		})
	})
	if len(entries) == 0 {
		return network.OutboundPacket{}, false
	}
	buf, err := codec.EncodeSnapshot(codec.TypeVelocitySnapshot, 0, nowMS, worldTick, entries)
	if err != nil {
		return network.OutboundPacket{}, false
	}
	return network.OutboundPacket{Payload: buf, Broadcast: true}, true
}

func buildHealthSnapshot(w *ecs.World, worldTick, nowMS uint32) (network.OutboundPacket, bool) {
	store, err := ecs.Store[ecs.Health](w)
	if err != nil || store.Len() == 0 {
		return network.OutboundPacket{}, false
	}
	var entries []codec.SnapshotEntry[codec.HealthData]
	store.Each(func(id ecs.EntityID, h ecs.Health) {
		if !w.IsNetworked(id) {
			return
		}
		entries = append(entries, codec.SnapshotEntry[codec.HealthData]{
			EntityID: uint32(id),
			Data:     codec.HealthData{CurrentHealth: uint8(h.Current), MaxHealth: uint8(h.Max)},
		})
	})
	if len(entries) == 0 {
		return network.OutboundPacket{}, false
	}
	buf, err := codec.EncodeSnapshot(codec.TypeHealthSnapshot, 0, nowMS, worldTick, entries)
	if err != nil {
		return network.OutboundPacket{}, false
	}
	return network.OutboundPacket{Payload: buf, Broadcast: true}, true
}

func buildWeaponSnapshot(w *ecs.World, worldTick, nowMS uint32) (network.OutboundPacket, bool) {
	store, err := ecs.Store[ecs.Weapon](w)
	if err != nil || store.Len() == 0 {
		return network.OutboundPacket{}, false
	}
	var entries []codec.SnapshotEntry[codec.WeaponData]
	store.Each(func(id ecs.EntityID, wpn ecs.Weapon) {
		if !w.IsNetworked(id) {
			return
		}
		entries = append(entries, codec.SnapshotEntry[codec.WeaponData]{
			EntityID: uint32(id),
			Data:     codec.WeaponData{WeaponType: uint8(weaponKindToWire(wpn.ProjectileOf))},
		})
	})
	if len(entries) == 0 {
		return network.OutboundPacket{}, false
	}
	buf, err := codec.EncodeSnapshot(codec.TypeWeaponSnapshot, 0, nowMS, worldTick, entries)
	if err != nil {
		return network.OutboundPacket{}, false
	}
	return network.OutboundPacket{Payload: buf, Broadcast: true}, true
}

func buildAISnapshot(w *ecs.World, worldTick, nowMS uint32) (network.OutboundPacket, bool) {
	store, err := ecs.Store[ecs.AI](w)
	if err != nil || store.Len() == 0 {
		return network.OutboundPacket{}, false
	}
	var entries []codec.SnapshotEntry[codec.AIData]
	store.Each(func(id ecs.EntityID, ai ecs.AI) {
		if !w.IsNetworked(id) {
			return
		}
		entries = append(entries, codec.SnapshotEntry[codec.AIData]{
			EntityID: uint32(id),
			Data: codec.AIData{
				BehaviorType:   uint8(ai.Behavior),
				TargetEntityID: uint32(ai.TargetEntity),
				StateTimer:     uint16(ai.InternalClockMS),
			},
		})
	})
	if len(entries) == 0 {
		return network.OutboundPacket{}, false
	}
	buf, err := codec.EncodeSnapshot(codec.TypeAISnapshot, 0, nowMS, worldTick, entries)
	if err != nil {
		return network.OutboundPacket{}, false
	}
	return network.OutboundPacket{Payload: buf, Broadcast: true}, true
}

func (c *Coordinator) drainWeaponFire(nowMS uint32) []network.OutboundPacket {
	c.mu.Lock()
	events := c.pendingWeaponFire
	c.pendingWeaponFire = nil
	c.mu.Unlock()

	out := make([]network.OutboundPacket, 0, len(events))
	for _, e := range events {
		buf, err := codec.EncodePacket(codec.TypeWeaponFire, 0, 0, nowMS, codec.WeaponFire{
			ShooterID:    uint32(e.ShooterID),
			ProjectileID: uint32(e.ProjectileID),
			OriginX:      int16(e.OriginX),
			OriginY:      int16(e.OriginY),
			DirectionX:   int16(e.DirectionX * 1000),
			DirectionY:   int16(e.DirectionY * 1000),
			WeaponType:   weaponKindToWire(e.Kind),
		})
		if err != nil {
			continue
		}
		out = append(out, network.OutboundPacket{Payload: buf, Broadcast: true})
	}
	return out
}

// entitySpawnBase builds the recipient-independent fields of an
// ENTITY_SPAWN packet for id; IsPlayable is left zero for the caller to
// fill in per recipient (spec.md §4.5/§6: is_playable is only ever 1 on
// the owning client's own copy).
func (c *Coordinator) entitySpawnBase(id ecs.EntityID) codec.EntitySpawn {
	transform, _ := ecs.GetComponent[ecs.Transform](c.world, id)
	health, _ := ecs.GetComponent[ecs.Health](c.world, id)
	velocity, _ := ecs.GetComponent[ecs.Velocity](c.world, id)
	entityType := codec.EntityTypePlayer
	if ecs.HasComponent[ecs.Enemy](c.world, id) {
		entityType = codec.EntityTypeEnemy
		if enemy, _ := ecs.GetComponent[ecs.Enemy](c.world, id); enemy.BossTier > 0 {
			entityType = codec.EntityTypeEnemyBoss
		}
	}
	return codec.EntitySpawn{
		EntityID:      uint32(id),
		EntityType:    entityType,
		PositionX:     uint16(transform.X),
		PositionY:     uint16(transform.Y),
		InitialHealth: uint8(health.Current),
		InitialVelX:   uint16(velocity.VX),
		InitialVelY:   uint16(velocity.VY),
	}
}

// produceNewEntitySpawns announces every networked entity that has not
// yet been broadcast. A player entity gets two copies: one addressed to
// its owning client with is_playable=1, and a broadcast to everyone else
// with is_playable=0 - IsPlayable cannot be a single global flag on the
// entity since its correct value depends on who is receiving it.
func (c *Coordinator) produceNewEntitySpawns(nowMS uint32) []network.OutboundPacket {
	store, err := ecs.Store[ecs.NetworkID](c.world)
	if err != nil {
		return nil
	}
	var out []network.OutboundPacket
	store.Each(func(id ecs.EntityID, netID ecs.NetworkID) {
		c.mu.Lock()
		_, already := c.broadcastedEntity[id]
		if !already {
			c.broadcastedEntity[id] = struct{}{}
		}
		c.mu.Unlock()
		if already {
			return
		}

		base := c.entitySpawnBase(id)
		owned := netID.IsLocal && netID.OwnerPID != 0

		broadcastBody := base
		broadcastBody.IsPlayable = 0
		if buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 0, nowMS, broadcastBody); err == nil {
			pkt := network.OutboundPacket{Payload: buf, Broadcast: true}
			if owned {
				pkt.HasExceptClient = true
				pkt.ExceptClientID = netID.OwnerPID
			}
			out = append(out, pkt)
		}

		if owned {
			ownerBody := base
			ownerBody.IsPlayable = 1
			if buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 0, nowMS, ownerBody); err == nil {
				out = append(out, network.OutboundPacket{Payload: buf, HasTargetClient: true, TargetClientID: netID.OwnerPID})
			}
		}
	})
	return out
}

// produceCatchupSpawns answers spec.md §6's handshake requirement that a
// newly accepted client receives an ENTITY_SPAWN for every entity that
// already exists, not just entities spawned from here on -
// broadcastedEntity's dedup is otherwise a one-shot, not per-client, gate
// and would starve a late joiner of everything already on the field.
func (c *Coordinator) produceCatchupSpawns(nowMS uint32) []network.OutboundPacket {
	c.mu.Lock()
	clients := c.pendingCatchup
	c.pendingCatchup = nil
	c.mu.Unlock()
	if len(clients) == 0 {
		return nil
	}

	store, err := ecs.Store[ecs.NetworkID](c.world)
	if err != nil {
		return nil
	}

	var out []network.OutboundPacket
	for _, clientID := range clients {
		store.Each(func(id ecs.EntityID, netID ecs.NetworkID) {
			c.mu.Lock()
			_, known := c.broadcastedEntity[id]
			c.mu.Unlock()
			if !known {
				// Not yet announced to anyone; this tick's own
				// produceNewEntitySpawns call already reaches the
				// new client too.
				return
			}
			body := c.entitySpawnBase(id)
			if netID.IsLocal && netID.OwnerPID == clientID {
				body.IsPlayable = 1
			}
			buf, err := codec.EncodePacket(codec.TypeEntitySpawn, 0, 0, nowMS, body)
			if err != nil {
				return
			}
			out = append(out, network.OutboundPacket{Payload: buf, HasTargetClient: true, TargetClientID: clientID})
		})
	}
	return out
}

func (c *Coordinator) drainDestroyedEntities(nowMS uint32) []network.OutboundPacket {
	c.mu.Lock()
	events := c.destroyedEntity
	c.destroyedEntity = nil
	c.mu.Unlock()

	out := make([]network.OutboundPacket, 0, len(events))
	for _, e := range events {
		c.mu.Lock()
		delete(c.broadcastedEntity, e.EntityID)
		c.mu.Unlock()
		buf, err := codec.EncodePacket(codec.TypeEntityDestroy, 0, 0, nowMS, codec.EntityDestroy{
			EntityID:      uint32(e.EntityID),
			DestroyReason: e.Reason,
			FinalPosX:     int16(e.FinalX),
			FinalPosY:     int16(e.FinalY),
		})
		if err != nil {
			continue
		}
		out = append(out, network.OutboundPacket{Payload: buf, Broadcast: true})
	}
	return out
}
