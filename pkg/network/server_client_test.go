package network_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/network"
)

type recordingHandler struct {
	mu        sync.Mutex
	accepted  []uint32
	disconnected []uint32
}

func (h *recordingHandler) HandleAccept(clientID uint32, playerName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accepted = append(h.accepted, clientID)
}

func (h *recordingHandler) HandleDisconnect(clientID uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, clientID)
}

func (h *recordingHandler) acceptedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.accepted)
}

func TestServerAcceptsClientHandshake(t *testing.T) {
	handler := &recordingHandler{}
	server, err := network.NewServerManager(network.ServerConfig{
		BindAddr:   "127.0.0.1:0",
		MaxPlayers: 4,
		TickRate:   60,
		Handler:    handler,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server.Start(ctx)
	defer func() {
		cancel()
		_ = server.Stop()
	}()

	client, err := network.NewClientManager(network.ClientConfig{
		ServerAddr: server.LocalAddr().String(),
		PlayerName: "tester",
	})
	require.NoError(t, err)
	defer client.Stop()

	require.NoError(t, client.Connect())
	require.True(t, client.Connected())
	require.NotZero(t, client.PlayerID())

	require.Eventually(t, func() bool { return server.ActiveSlotCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return handler.acceptedCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestServerRejectsWhenFull(t *testing.T) {
	server, err := network.NewServerManager(network.ServerConfig{
		BindAddr:   "127.0.0.1:0",
		MaxPlayers: 0,
		TickRate:   60,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server.Start(ctx)
	defer func() {
		cancel()
		_ = server.Stop()
	}()

	client, err := network.NewClientManager(network.ClientConfig{
		ServerAddr:    server.LocalAddr().String(),
		PlayerName:    "tester",
		AcceptTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Stop()

	err = client.Connect()
	require.Error(t, err)
	require.False(t, client.Connected())
}
