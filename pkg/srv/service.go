package srv

import (
	"context"

	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices runs every Start in its own goroutine. A failing Start
// is fatal.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then shuts services down in
// reverse order so that dependents stop before what they depend on.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
