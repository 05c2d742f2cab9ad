package coordinator

import (
	"github.com/opd-ai/rtype/pkg/ecs"
	"github.com/opd-ai/rtype/pkg/network/codec"
)

// DefaultSpawnX and DefaultSpawnY place every new player at a fixed
// point; spec.md leaves spawn placement to the host application and the
// teacher's createPlayerEntity uses a single fixed default too.
const (
	DefaultSpawnX = 100.0
	DefaultSpawnY = 300.0
)

// HandleAccept implements network.ConnectionHandler: it spawns a player
// entity for the newly accepted slot and remembers the mapping so
// HandleDisconnect can clean it up. Grounded on the teacher's
// cmd/server/main.go background goroutine that creates a player entity
// on ReceivePlayerJoin, generalized from a channel-driven callback into a
// direct method call the network manager invokes synchronously from the
// main/game-loop thread's next Dispatch.
func (c *Coordinator) HandleAccept(clientID uint32, playerName string) {
	id, err := c.SpawnLocalPlayer(clientID, DefaultSpawnX, DefaultSpawnY, PlayerSpawnOptions{})
	if err != nil {
		if c.log != nil {
			c.log.WithError(err).WithField("client_id", clientID).Warn("spawn player on accept failed")
		}
		return
	}
	if err := c.SpawnScore(id, clientID); err != nil && c.log != nil {
		c.log.WithError(err).WithField("client_id", clientID).Warn("attach score on accept failed")
	}
	c.mu.Lock()
	c.playerEntities[clientID] = id
	c.mu.Unlock()
	c.QueueCatchupSpawns(clientID)
}

// HandleDisconnect implements network.ConnectionHandler: it destroys the
// departing client's player entity and reports it via ENTITY_DESTROY on
// the next outbound tick.
func (c *Coordinator) HandleDisconnect(clientID uint32) {
	c.mu.Lock()
	id, ok := c.playerEntities[clientID]
	delete(c.playerEntities, clientID)
	c.mu.Unlock()
	if !ok {
		return
	}
	x, y := DefaultSpawnX, DefaultSpawnY
	if transform, err := ecs.GetComponent[ecs.Transform](c.world, id); err == nil {
		x, y = transform.X, transform.Y
	}
	// No DestroyReason names a voluntary/timeout disconnect; despawn
	// timeout is the closest existing fit (see DESIGN.md).
	c.QueueDestroy(id, codec.DestroyTimeoutDespawn, x, y)
	_ = c.world.DestroyEntity(id)
}
