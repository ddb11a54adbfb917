package servers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cite-events/pkg/resources"
)

func TestHttpServer_RunAndStop(t *testing.T) {
	t.Parallel()

	name, server := BuildHttpServer("test-server", &http.Server{
		Addr:              "localhost:0",
		Handler:           http.NewServeMux(),
		ReadHeaderTimeout: time.Second,
	})
	assert.Equal(t, "test-server", name)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestBaseServer_ReleasesClosables(t *testing.T) {
	t.Parallel()

	released := false

	name, server := BuildBaseServer(resources.CloserFunc(func() { released = true }))
	assert.Equal(t, "base-server", name)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("base server did not unblock")
	}

	assert.True(t, released)
}
