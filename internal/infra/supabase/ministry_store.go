package supabase

import (
	"context"
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
)

// ============================================================
// Events & Leaders (implements port.MinistryStore)
// ============================================================

func (c *Client) InsertEvent(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertEvent")
	defer span.End()

	row := map[string]any{
		"title": e.Title,
		"date":  e.Date,
		"type":  e.Type,
	}
	optional(row, "description", e.Description)

	var created *domain.Event
	err := c.write(ctx, "events", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "events", row, preferRepresentation)
		if err != nil {
			return err
		}
		created, err = decodeOne[domain.Event](body, "events")
		return err
	})
	return created, err
}

func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListEvents")
	defer span.End()

	var events []domain.Event
	err := c.read(ctx, "events", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "events?select=*&order=date.asc,created_at.asc", nil, "")
		if err != nil {
			return err
		}
		events, err = decodeRows[domain.Event](body, "events")
		return err
	})
	return events, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteEvent")
	defer span.End()

	return c.write(ctx, "events", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "events?"+eq("id", id), nil, preferMinimal)
		return err
	})
}

func (c *Client) InsertLeader(ctx context.Context, l *domain.Leader) (*domain.Leader, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertLeader")
	defer span.End()

	row := map[string]any{
		"name":  l.Name,
		"title": l.Title,
		"phone": l.Phone,
	}

	var created *domain.Leader
	err := c.write(ctx, "leaders", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "leaders", row, preferRepresentation)
		if err != nil {
			return err
		}
		created, err = decodeOne[domain.Leader](body, "leaders")
		return err
	})
	return created, err
}

func (c *Client) ListLeaders(ctx context.Context) ([]domain.Leader, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeaders")
	defer span.End()

	var leaders []domain.Leader
	err := c.read(ctx, "leaders", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "leaders?select=*&order=name.asc", nil, "")
		if err != nil {
			return err
		}
		leaders, err = decodeRows[domain.Leader](body, "leaders")
		return err
	})
	return leaders, err
}

func (c *Client) DeleteLeader(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLeader")
	defer span.End()

	return c.write(ctx, "leaders", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "leaders?"+eq("id", id), nil, preferMinimal)
		return err
	})
}
