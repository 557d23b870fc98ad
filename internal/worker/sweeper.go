// Package worker runs the background jobs of the booking service.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/lumo-cinema/ticketing/internal/repository"
)

// RunHoldSweeper periodically deletes expired reserved holds.  The sweep
// is purely housekeeping: every read path re-derives liveness from
// expires_at, so a delayed or skipped sweep never affects correctness.
// The loop exits when ctx is cancelled.
func RunHoldSweeper(ctx context.Context, holds *repository.SeatHoldRepo, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("hold-sweeper: running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("hold-sweeper: stopped")
			return
		case <-ticker.C:
			n, err := holds.SweepExpired(ctx)
			if err != nil {
				log.Printf("hold-sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("hold-sweeper: released %d expired holds", n)
			}
		}
	}
}
