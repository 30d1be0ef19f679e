package discovery

import (
	"context"
	"time"

	"github.com/khushveer007/courseget/internal/logger"
)

// loginWaitSession wraps a session whose establishment requires a manual
// login in an already-open browser window. The pause is a one-time blocking
// wait before discovery begins and stays entirely outside the concurrency
// core.
type loginWaitSession struct {
	Session

	wait     time.Duration
	headless bool
}

// WithLoginWait adds a manual-login pause to a session's Init. A headless
// run cannot complete an interactive login and fails fast instead of
// hanging.
func WithLoginWait(s Session, wait time.Duration, headless bool) Session {
	return &loginWaitSession{
		Session:  s,
		wait:     wait,
		headless: headless,
	}
}

func (s *loginWaitSession) Init(ctx context.Context) error {
	if err := s.Session.Init(ctx); err != nil {
		return err
	}

	if s.wait <= 0 {
		return nil
	}

	if s.headless {
		return ErrLoginRequired
	}

	logger.Header("ACTION REQUIRED: complete the login manually")
	logger.Warn("Waiting %s for the login to finish. Do not close the browser.", s.wait)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.wait):
	}

	logger.Success("Login wait over, continuing.")

	return nil
}
