// Package statussvc serves a running fitting job's progress over gRPC
// (spec §4.10). It adapts the teacher's EvolutionServer shape
// (intelligence/evolution_server.go: a struct embedding
// UnimplementedXServer, a StartXServer helper wiring grpc.NewServer +
// net.Listen) to a single-method snapshot server backed by
// google.protobuf.Struct instead of generated domain messages.
package statussvc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/netfit/fitctl/api/statuspb"
	"github.com/netfit/fitctl/internal/model"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot is the latest known state of one fitting job.
type Snapshot struct {
	JobName        string
	Generation     int
	BestScore      float64
	Best           model.Individual
	Decision       string // "running", "final", "stalled", "threshold-met", "insufficient-survivors"
	BootstrapIter  int
	BootstrapCount int
	FailedLastGen  int
}

// Server implements statuspb.StatusServiceServer over a mutable Snapshot.
type Server struct {
	statuspb.UnimplementedStatusServiceServer

	mu   sync.RWMutex
	snap Snapshot
	Log  zerolog.Logger
}

// New returns a Server reporting JobName as running, at generation 0.
func New(jobName string, log zerolog.Logger) *Server {
	return &Server{snap: Snapshot{JobName: jobName, Decision: "running"}, Log: log}
}

// Update replaces the current snapshot. Called by the controller after
// each generation completes and at each terminal decision; inside a
// bootstrap run, each iteration's controller calls it with its
// iteration number.
func (s *Server) Update(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Current returns a copy of the latest snapshot.
func (s *Server) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// GetStatus renders the current snapshot as a structpb.Struct.
func (s *Server) GetStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	snap := s.Current()
	fields := map[string]interface{}{
		"job_name":        snap.JobName,
		"generation":      float64(snap.Generation),
		"best_score":      snap.BestScore,
		"best_perm_id":    float64(snap.Best.PermID),
		"decision":        snap.Decision,
		"bootstrap_iter":  float64(snap.BootstrapIter),
		"bootstrap_count": float64(snap.BootstrapCount),
		"failed_last_gen": float64(snap.FailedLastGen),
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("statussvc: build status struct: %w", err)
	}
	return out, nil
}

// Serve starts a gRPC server hosting srv at addr and blocks until ctx is
// canceled or the listener fails.
func Serve(ctx context.Context, addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("statussvc: listen %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	statuspb.RegisterStatusServiceServer(grpcServer, srv)

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()

	srv.Log.Info().Str("addr", addr).Msg("status service listening")

	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
