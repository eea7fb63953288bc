package oracle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttled limits s to perMinute requests per minute. A non-positive rate
// returns s unchanged.
func Throttled(s Session, perMinute int) Session {
	if perMinute <= 0 {
		return s
	}
	return &throttled{
		Session: s,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

type throttled struct {
	Session
	limiter *rate.Limiter
}

func (t *throttled) Send(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.Session.Send(ctx, prompt)
}
