package app

import (
	"context"
	"fmt"

	streamsvc "github.com/streamcast/streamcast/internal/services/streams"
)

// seed loads a pair of demo streams so the frontend has content on a fresh
// start. Failures abort the remaining entries.
func (a *Application) seed(ctx context.Context) error {
	demos := []streamsvc.CreateParams{
		{
			Title:          "Late Night Coding",
			CreatorAddress: "0x1111111111111111111111111111111111111111",
			Category:       "Programming",
			Description:    "Building a web app live",
		},
		{
			Title:          "Crypto Market Watch",
			CreatorAddress: "0x2222222222222222222222222222222222222222",
			Category:       "Finance",
			Description:    "Daily market roundup",
		},
	}
	for _, params := range demos {
		if _, err := a.Streams.Create(ctx, params); err != nil {
			return fmt.Errorf("seed stream %q: %w", params.Title, err)
		}
	}
	a.log.Infof("seeded %d demo streams", len(demos))
	return nil
}
