package network_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/rtype/pkg/network"
)

func TestTransportSendReceiveRoundTrip(t *testing.T) {
	server, err := network.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	client, err := network.Dial(server.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SendTo([]byte("hello"), nil))

	dg, err := server.ReceiveFrom(200 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, dg)
	require.Equal(t, []byte("hello"), dg.Payload)

	require.NoError(t, server.SendTo([]byte("world"), dg.From))

	reply, err := client.ReceiveFrom(200 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, reply)
	require.Equal(t, []byte("world"), reply.Payload)
}

func TestTransportReceiveTimeoutReturnsNilNotError(t *testing.T) {
	server, err := network.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	dg, err := server.ReceiveFrom(5 * time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, dg)
}

func TestTransportSendToRejectsOversizedPayload(t *testing.T) {
	server, err := network.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	client, err := network.Dial(server.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	err = client.SendTo(make([]byte, network.MaxDatagramSize+1), nil)
	require.Error(t, err)
}

func TestTransportTracksLastEndpoint(t *testing.T) {
	server, err := network.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Close()

	client, err := network.Dial(server.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SendTo([]byte("ping"), nil))
	dg, err := server.ReceiveFrom(200 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, dg)

	addr, ok := server.LastEndpoint(dg.From.String())
	require.True(t, ok)
	require.Equal(t, dg.From.String(), addr.String())
}
