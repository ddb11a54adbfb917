package servers

import (
	"context"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"

	"cite-events/pkg/resources"
)

// baseServer holds no listener; it exists to release shared resources (the
// database pool, the tracer provider) once the real servers have stopped.
type baseServer struct {
	name         string
	closeChannel chan struct{}
	closables    []resources.Closable
}

func BuildBaseServer(closables ...resources.Closable) (string, Server) {
	return "base-server", NewBaseServer(closables...)
}

func NewBaseServer(closables ...resources.Closable) lifecycle.Server {
	return &baseServer{
		name:         "base-server",
		closeChannel: make(chan struct{}),
		closables:    closables,
	}
}

func (server *baseServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	<-server.closeChannel

	return nil
}

func (server *baseServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	for _, closable := range server.closables {
		closable.Close()
	}

	close(server.closeChannel)

	return nil
}
