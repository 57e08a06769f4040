package srv

import "context"

// cleanupService releases a resource on shutdown and does nothing on start.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(context.Context) error { return nil }

func (c *cleanupService) Shutdown(context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
