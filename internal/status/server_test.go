package status

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, store *Store) (*Server, chan error) {
	server, err := Listen(store, "127.0.0.1", 0)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Serve()
	}()
	t.Cleanup(func() { _ = server.Close() })
	return server, done
}

func request(t *testing.T, server *Server) string {
	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(data)
}

func TestServer_SendsLatestSnapshot(t *testing.T) {
	// GIVEN
	store := NewStore()
	store.Set(createSnapshot())
	server, _ := startServer(t, store)

	// WHEN
	result := request(t, server)

	// THEN
	assert.Equal(t, expectedJson+"\n", result)

	// one snapshot per connection, every connection gets the latest one
	snapshot := createSnapshot()
	snapshot.Temperature = 60
	store.Set(snapshot)
	assert.Contains(t, request(t, server), `"temp":60`)
}

func TestServer_NoSnapshotYet(t *testing.T) {
	// GIVEN
	server, _ := startServer(t, NewStore())

	// WHEN
	result := request(t, server)

	// THEN
	assert.Empty(t, result)
}

func TestServer_Close(t *testing.T) {
	// GIVEN
	server, done := startServer(t, NewStore())

	// WHEN
	err := server.Close()

	// THEN
	assert.NoError(t, err)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
	assert.NoError(t, server.Close())
}
