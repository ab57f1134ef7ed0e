package email

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campus-coins/backend/internal/application/adapter"
	"github.com/campus-coins/backend/internal/integration/email/templates"
	"github.com/campus-coins/backend/internal/integration/persistence"
)

func newTestQueue(t *testing.T) adapter.EmailQueueRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return persistence.NewRedisEmailQueueRepository(client)
}

func newTestRenderer(t *testing.T) *templates.Renderer {
	t.Helper()
	r, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

// blockingSender never returns until its context is done.
type blockingSender struct{}

func (blockingSender) Send(ctx context.Context, _ adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
