package controller

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval is how often the unread badge re-fetches chats.
const DefaultPollInterval = 30 * time.Second

// PollUnread periodically re-fetches the viewer's chats and reports the sum
// of their unread counters through report. It runs until ctx is canceled,
// i.e. while the viewer is present. Fetch failures are logged and the
// previous total stands until the next tick.
func (c *Controller) PollUnread(ctx context.Context, interval time.Duration, report func(total int)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				chats, err := c.svc.ListChats(ctx, c.viewerID)
				if err != nil {
					log.Printf("controller: unread poll: %v", err)
					continue
				}
				total := 0
				for _, chat := range chats {
					total += chat.UnreadCount
				}
				report(total)
			}
		}
	}()
}
