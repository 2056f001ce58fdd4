package investment

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the accrual pass on a fixed interval until ctx is done.
type Scheduler struct {
	service  *Service
	interval time.Duration
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{service: service, interval: interval}
}

// Start blocks; run it in its own goroutine. One pass runs immediately so a
// restart does not delay crediting by a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Profit accrual job started, interval %s", s.interval)
	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Profit accrual job stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	result, err := s.service.Accrue(ctx)
	if err != nil {
		log.Printf("Profit accrual failed: %v", err)
		return
	}
	if result.Processed > 0 {
		log.Printf("Profit accrual: processed=%d days=%d matured=%d failed=%d",
			result.Processed, result.DaysCredited, result.Matured, result.Failed)
	}
}
