package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"creatorhub/internal/models"
	"creatorhub/internal/repository"
	"creatorhub/internal/service"
)

// TokenRefreshJob proactively rotates platform tokens that are about to
// expire so request-time refreshes stay the exception. Only the full-access
// platform supports refresh; restricted sessions are re-established by the
// creator and are skipped here.
type TokenRefreshJob struct {
	pc repository.PlatformConnectionRepository
	of service.OnlyFansService
}

func NewTokenRefreshJob(pc repository.PlatformConnectionRepository, of service.OnlyFansService) *TokenRefreshJob {
	return &TokenRefreshJob{
		pc: pc,
		of: of,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	timeIn30Minutes := time.Now().Add(30 * time.Minute)

	connections, err := c.pc.ListByTokenExpiry(ctx, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, conn := range connections {
		if conn.Platform != models.PlatformOnlyFans {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(conn *models.PlatformConnection) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.of.RefreshToken(ctx, conn); err != nil {
				slog.Info("Unable to refresh token", "connection_id", conn.ID)
			}
		}(conn)
	}

	wg.Wait()
}
