// Package report renders ledger exports as CSV or XLSX.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Scope selects which transactions a report covers.
type Scope string

const (
	ScopeMini   Scope = "mini"
	ScopeWeekly Scope = "weekly"
	ScopeFull   Scope = "full"
)

const (
	miniSize   = 5
	sheetName  = "Ledger"
	dateLayout = "2006-01-02"
)

// Header is the column row of every export.
var Header = []string{"Date", "Description", "Category", "Type", "Amount", "Status"}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeMini, ScopeWeekly, ScopeFull:
		return Scope(s), nil
	}
	return "", &domain.ErrValidation{Field: "scope", Message: "must be mini, weekly or full"}
}

// Select applies a scope to a ledger snapshot ordered newest first.
// Weekly keeps the transactions dated within the seven days ending at now.
func Select(scope Scope, txs []domain.Transaction, now time.Time) []domain.Transaction {
	switch scope {
	case ScopeMini:
		if len(txs) > miniSize {
			return txs[:miniSize]
		}
		return txs
	case ScopeWeekly:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		from := today.AddDate(0, 0, -6)
		out := make([]domain.Transaction, 0, len(txs))
		for _, tx := range txs {
			d, err := time.Parse(dateLayout, tx.Date)
			if err != nil {
				continue
			}
			if !d.Before(from) && !d.After(today) {
				out = append(out, tx)
			}
		}
		return out
	default:
		return txs
	}
}

// Filename is the suggested download name for a report.
func Filename(scope Scope, ext string, now time.Time) string {
	return fmt.Sprintf("graceflow_%s_report_%s.%s", scope, now.Format(dateLayout), ext)
}

func row(tx domain.Transaction) []string {
	return []string{
		tx.Date,
		tx.Description,
		tx.Category,
		string(tx.Kind),
		strconv.FormatInt(tx.Amount, 10),
		string(tx.EffectiveStatus()),
	}
}

// WriteCSV writes the header and one row per transaction. A missing
// status is written as approved.
func WriteCSV(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(row(tx)); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same columns as WriteCSV into a workbook with a
// single sheet named Ledger. Amounts are numeric cells.
func WriteXLSX(w io.Writer, txs []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{tx.Date, tx.Description, tx.Category, string(tx.Kind), tx.Amount, string(tx.EffectiveStatus())}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", tx.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
