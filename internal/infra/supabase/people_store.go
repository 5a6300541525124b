package supabase

import (
	"context"
	"net/http"

	"github.com/graceflow/graceflow-api/internal/domain"
)

// ============================================================
// Members & Visitors (implements port.PeopleStore)
// ============================================================

// Both tables use the domain JSON tags as their column names.

func (c *Client) InsertMember(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertMember")
	defer span.End()

	row := map[string]any{
		"full_name": m.FullName,
		"phone":     m.Phone,
		"join_date": m.JoinDate,
	}
	optional(row, "email", m.Email)
	optional(row, "birth_date", m.BirthDate)
	optional(row, "location", m.Location)
	optional(row, "group_name", m.GroupName)
	optional(row, "tribe", m.Tribe)

	var created *domain.Member
	err := c.write(ctx, "members", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "members", row, preferRepresentation)
		if err != nil {
			return err
		}
		created, err = decodeOne[domain.Member](body, "members")
		return err
	})
	return created, err
}

func (c *Client) ListMembers(ctx context.Context) ([]domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMembers")
	defer span.End()

	var members []domain.Member
	err := c.read(ctx, "members", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "members?select=*&order=created_at.desc", nil, "")
		if err != nil {
			return err
		}
		members, err = decodeRows[domain.Member](body, "members")
		return err
	})
	return members, err
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteMember")
	defer span.End()

	return c.write(ctx, "members", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "members?"+eq("id", id), nil, preferMinimal)
		return err
	})
}

func (c *Client) InsertVisitor(ctx context.Context, v *domain.Visitor) (*domain.Visitor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertVisitor")
	defer span.End()

	row := map[string]any{
		"full_name":  v.FullName,
		"phone":      v.Phone,
		"visit_date": v.VisitDate,
	}
	optional(row, "origin", v.Origin)
	optional(row, "location", v.Location)
	optional(row, "email", v.Email)
	optional(row, "reason", v.Reason)

	var created *domain.Visitor
	err := c.write(ctx, "visitors", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "visitors", row, preferRepresentation)
		if err != nil {
			return err
		}
		created, err = decodeOne[domain.Visitor](body, "visitors")
		return err
	})
	return created, err
}

func (c *Client) ListVisitors(ctx context.Context) ([]domain.Visitor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListVisitors")
	defer span.End()

	var visitors []domain.Visitor
	err := c.read(ctx, "visitors", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "visitors?select=*&order=created_at.desc", nil, "")
		if err != nil {
			return err
		}
		visitors, err = decodeRows[domain.Visitor](body, "visitors")
		return err
	})
	return visitors, err
}

func (c *Client) DeleteVisitor(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteVisitor")
	defer span.End()

	return c.write(ctx, "visitors", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "visitors?"+eq("id", id), nil, preferMinimal)
		return err
	})
}

func optional(row map[string]any, key, value string) {
	if value != "" {
		row[key] = value
	}
}
