package cli

import (
	"context"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/statussvc"
	"github.com/rs/zerolog"
)

// maybeStartStatusServer launches the progress/status gRPC service
// (spec_full §2 item 15) for the duration of ctx when cfg.StatusAddr is
// set, returning the Server for the controller/bootstrap runner to push
// snapshots into. Returns nil if disabled.
func maybeStartStatusServer(ctx context.Context, cfg *config.FitConfig, log zerolog.Logger) *statussvc.Server {
	if cfg.StatusAddr == "" {
		return nil
	}
	srv := statussvc.New(cfg.JobName, log)
	go func() {
		if err := statussvc.Serve(ctx, cfg.StatusAddr, srv); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("status service exited")
		}
	}()
	return srv
}
