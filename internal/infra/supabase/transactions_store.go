package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Ledger: transactions table (implements port.LedgerStore)
// ============================================================

// supabaseTransaction maps the transactions table columns. Numeric
// columns are decoded as decimals so large values keep every digit.
type supabaseTransaction struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Status      *string         `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (r supabaseTransaction) toDomain() domain.Transaction {
	t := domain.Transaction{
		ID:          r.ID,
		Kind:        domain.TransactionKind(r.Type),
		Category:    r.Category,
		Amount:      r.Amount.IntPart(),
		Description: r.Description,
		Date:        r.Date,
		CreatedAt:   r.CreatedAt,
	}
	if r.Status != nil {
		t.Status = domain.TransactionStatus(*r.Status)
	}
	return t
}

func (c *Client) InsertTransaction(ctx context.Context, tx *domain.NewTransaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("transaction.kind", string(tx.Kind)),
		attribute.String("transaction.status", string(tx.Status)),
	)

	row := map[string]any{
		"type":        tx.Kind,
		"category":    tx.Category,
		"amount":      tx.Amount,
		"description": tx.Description,
		"date":        tx.Date,
		"status":      tx.Status,
	}

	var created *domain.Transaction
	err := c.write(ctx, "transactions", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "transactions", row, preferRepresentation)
		if err != nil {
			return err
		}
		r, err := decodeOne[supabaseTransaction](body, "transactions")
		if err != nil {
			return err
		}
		t := r.toDomain()
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	var txs []domain.Transaction
	err := c.read(ctx, "transactions", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "transactions?select=*&order=created_at.desc", nil, "")
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabaseTransaction](body, "transactions")
		if err != nil {
			return err
		}
		txs = make([]domain.Transaction, 0, len(rows))
		for _, r := range rows {
			txs = append(txs, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("transactions.count", len(txs)))
	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	var tx *domain.Transaction
	err := c.read(ctx, "transactions", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("transactions?%s&limit=1", eq("id", id)), nil, "")
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabaseTransaction](body, "transactions")
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "transaction", ID: id})
		}
		t := rows[0].toDomain()
		tx = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CompareAndSetStatus patches the row only while its status still equals
// expected. PostgREST returns the updated rows, so an empty array means
// the guard did not match.
func (c *Client) CompareAndSetStatus(ctx context.Context, id string, expected, next domain.TransactionStatus) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CompareAndSetStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("transaction.id", id),
		attribute.String("status.expected", string(expected)),
		attribute.String("status.next", string(next)),
	)

	path := fmt.Sprintf("transactions?%s&%s", eq("id", id), eq("status", string(expected)))

	var updated bool
	err := c.write(ctx, "transactions", func() error {
		body, err := c.doRequest(ctx, http.MethodPatch, path, map[string]any{"status": next}, preferRepresentation)
		if err != nil {
			return err
		}
		rows, err := decodeRows[supabaseTransaction](body, "transactions")
		if err != nil {
			return err
		}
		updated = len(rows) > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	return c.write(ctx, "transactions", func() error {
		_, err := c.doRequest(ctx, http.MethodDelete, "transactions?"+eq("id", id), nil, preferMinimal)
		return err
	})
}

// Ping reads at most one transaction id. It backs /healthz.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	return c.write(ctx, "transactions", func() error {
		_, err := c.doRequest(ctx, http.MethodGet, "transactions?select=id&limit=1", nil, "")
		return err
	})
}
