package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/repository"
)

type AnalyticsUseCase struct {
	connectionRepo repository.ConnectionRepository
	now            func() time.Time
}

func NewAnalyticsUseCase(connectionRepo repository.ConnectionRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{connectionRepo: connectionRepo, now: time.Now}
}

// Dashboard computes the summary for the user's connections. loc is the
// caller's time zone; nil means UTC.
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context, userID string, loc *time.Location) (*Summary, error) {
	conns, err := uc.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	s := Compute(conns, uc.now(), loc)
	return &s, nil
}
