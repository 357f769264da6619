package jobs

import (
	"context"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
	"github.com/opencourt-uk/publication-service/pkg/tools"
	"github.com/robfig/cron/v3"
)

// ScheduleDailyExpiry sets up a cron job that expires outdated artefacts every day.
func ScheduleDailyExpiry(ctx context.Context, svc *services.PublicationService) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@daily", func() {
		tools.Dispatch(context.Background(), "expire_artefacts", func(ctx context.Context) error {
			return svc.ExpireOutdated(ctx)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}
