package supabase

import (
	"context"
	"net/http"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/shopspring/decimal"
)

// ============================================================
// Assets & Pledges: CRUD via PostgREST (implements port.FinanceStore)
// ============================================================

type supabaseAsset struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Category      string              `json:"category"`
	Value         decimal.NullDecimal `json:"value"`
	Condition     string              `json:"condition"`
	PurchasedDate string              `json:"purchased_date"`
	CreatedAt     time.Time           `json:"created_at"`
}

func (r supabaseAsset) toDomain() domain.Asset {
	a := domain.Asset{
		ID:            r.ID,
		Name:          r.Name,
		Category:      domain.AssetCategory(r.Category),
		Condition:     r.Condition,
		PurchasedDate: r.PurchasedDate,
		CreatedAt:     r.CreatedAt,
	}
	// value is a nullable numeric column
	if r.Value.Valid {
		a.Value = r.Value.Decimal.IntPart()
	}
	return a
}

type supabasePledge struct {
	ID           string          `json:"id"`
	MemberID     *string         `json:"member_id"`
	MemberName   string          `json:"member_name"`
	Purpose      string          `json:"purpose"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	DueDate      string          `json:"due_date"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (r supabasePledge) toDomain() domain.Pledge {
	p := domain.Pledge{
		ID:           r.ID,
		MemberName:   r.MemberName,
		Purpose:      r.Purpose,
		TargetAmount: r.TargetAmount.IntPart(),
		PaidAmount:   r.PaidAmount.IntPart(),
		DueDate:      r.DueDate,
		Status:       domain.PledgeStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
	if r.MemberID != nil {
		p.MemberID = *r.MemberID
	}
	return p
}

// --- Assets ---

func (c *Client) InsertAsset(ctx context.Context, a *domain.Asset) (*domain.Asset, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertAsset")
	defer span.End()

	row := map[string]any{
		"name":           a.Name,
		"category":       a.Category,
		"value":          a.Value,
		"condition":      a.Condition,
		"purchased_date": a.PurchasedDate,
	}

	var created *domain.Asset
	err := c.write(ctx, "assets", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "assets", row, preferRepresentation)
		if err != nil {
			return err
		}
		r, err := decodeOne[supabaseAsset](body, "assets")
		if err != nil {
			return err
		}
		v := r.toDomain()
		created = &v
		return nil
	})
	return created, err
}

func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAssets")
	defer span.End()

	var assets []domain.Asset
	err := c.read(ctx, "assets", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "assets?select=*&order=created_at.desc", nil, "")
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabaseAsset](body, "assets")
		if err != nil {
			return err
		}
		assets = make([]domain.Asset, 0, len(rows))
		for _, r := range rows {
			assets = append(assets, r.toDomain())
		}
		return nil
	})
	return assets, err
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAsset")
	defer span.End()

	return c.write(ctx, "assets", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "assets?"+eq("id", id), nil, preferMinimal)
		return err
	})
}

// --- Pledges ---

func (c *Client) InsertPledge(ctx context.Context, p *domain.Pledge) (*domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertPledge")
	defer span.End()

	row := map[string]any{
		"member_name":   p.MemberName,
		"purpose":       p.Purpose,
		"target_amount": p.TargetAmount,
		"paid_amount":   p.PaidAmount,
		"due_date":      p.DueDate,
		"status":        p.Status,
	}
	if p.MemberID != "" {
		row["member_id"] = p.MemberID
	}

	var created *domain.Pledge
	err := c.write(ctx, "pledges", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "pledges", row, preferRepresentation)
		if err != nil {
			return err
		}
		r, err := decodeOne[supabasePledge](body, "pledges")
		if err != nil {
			return err
		}
		v := r.toDomain()
		created = &v
		return nil
	})
	return created, err
}

func (c *Client) ListPledges(ctx context.Context) ([]domain.Pledge, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPledges")
	defer span.End()

	var pledges []domain.Pledge
	err := c.read(ctx, "pledges", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "pledges?select=*&order=created_at.desc", nil, "")
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabasePledge](body, "pledges")
		if err != nil {
			return err
		}
		pledges = make([]domain.Pledge, 0, len(rows))
		for _, r := range rows {
			pledges = append(pledges, r.toDomain())
		}
		return nil
	})
	return pledges, err
}

func (c *Client) DeletePledge(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePledge")
	defer span.End()

	return c.write(ctx, "pledges", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "pledges?"+eq("id", id), nil, preferMinimal)
		return err
	})
}
