package statussvc

import (
	"context"
	"testing"

	"github.com/netfit/fitctl/internal/model"
	"github.com/rs/zerolog"
)

func TestGetStatusReflectsLatestUpdate(t *testing.T) {
	s := New("job-1", zerolog.Nop())
	s.Update(Snapshot{
		JobName:    "job-1",
		Generation: 3,
		BestScore:  1.25,
		Best:       model.Individual{PermID: 7, Score: 1.25},
		Decision:   "running",
	})

	out, err := s.GetStatus(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	fields := out.AsMap()
	if fields["generation"].(float64) != 3 {
		t.Fatalf("expected generation 3, got %v", fields["generation"])
	}
	if fields["best_perm_id"].(float64) != 7 {
		t.Fatalf("expected best_perm_id 7, got %v", fields["best_perm_id"])
	}
	if fields["job_name"].(string) != "job-1" {
		t.Fatalf("expected job_name job-1, got %v", fields["job_name"])
	}
}

func TestCurrentReturnsSnapshotCopy(t *testing.T) {
	s := New("job-2", zerolog.Nop())
	s.Update(Snapshot{JobName: "job-2", Generation: 1})
	snap := s.Current()
	snap.Generation = 99
	if s.Current().Generation == 99 {
		t.Fatalf("Current should return a copy, mutation leaked into server state")
	}
}
