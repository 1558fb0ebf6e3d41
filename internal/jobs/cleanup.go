package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/repository"
)

// Revoked and expired refresh tokens are kept for a while so the rotation
// chain can be audited after an incident, then purged.
const refreshTokenRetention = 60 * 24 * time.Hour

type CleanupJob struct {
	refreshTokenRepo repository.RefreshTokenRepository
	invitationRepo   repository.InvitationRepository
	interval         time.Duration
	done             chan struct{}
}

func NewCleanupJob(
	refreshTokenRepo repository.RefreshTokenRepository,
	invitationRepo repository.InvitationRepository,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		refreshTokenRepo: refreshTokenRepo,
		invitationRepo:   invitationRepo,
		interval:         interval,
		done:             make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runCleanup(ctx, "refresh tokens", func(ctx context.Context) (int64, error) {
		return j.refreshTokenRepo.DeleteStale(ctx, time.Now().Add(-refreshTokenRetention))
	})
	j.runCleanup(ctx, "invitations", j.invitationRepo.DeleteExpired)
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
