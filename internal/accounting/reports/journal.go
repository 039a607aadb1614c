package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
)

// JournalRow is one ledger line in the libro diario.
type JournalRow struct {
	Date         time.Time       `json:"date"`
	DocumentType string          `json:"documentType"`
	DocumentID   int64           `json:"documentId"`
	BatchID      string          `json:"batchId"`
	AccountCode  string          `json:"accountCode"`
	AccountName  string          `json:"accountName"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
}

// Journal is the libro diario for a date range.
type Journal struct {
	Rows        []JournalRow    `json:"rows"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// BuildJournal orders lines by date, then document id, keeping the lines of
// one posting contiguous, and accumulates grand totals.
func BuildJournal(lines []ledger.Line) Journal {
	sorted := make([]ledger.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].DocumentID != sorted[j].DocumentID {
			return sorted[i].DocumentID < sorted[j].DocumentID
		}
		if sorted[i].DocumentType != sorted[j].DocumentType {
			return sorted[i].DocumentType < sorted[j].DocumentType
		}
		if sorted[i].BatchID != sorted[j].BatchID {
			return sorted[i].BatchID.String() < sorted[j].BatchID.String()
		}
		return sorted[i].ID < sorted[j].ID
	})

	j := Journal{Rows: make([]JournalRow, 0, len(sorted)), TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, line := range sorted {
		j.Rows = append(j.Rows, JournalRow{
			Date:         line.Date,
			DocumentType: string(line.DocumentType),
			DocumentID:   line.DocumentID,
			BatchID:      line.BatchID.String(),
			AccountCode:  line.AccountCode,
			AccountName:  line.AccountName,
			Description:  line.Description,
			Debit:        line.Debit,
			Credit:       line.Credit,
		})
		j.TotalDebit = j.TotalDebit.Add(line.Debit)
		j.TotalCredit = j.TotalCredit.Add(line.Credit)
	}
	return j
}

// LedgerRow is one movement in a single account's libro mayor, with the
// running balance after the movement.
type LedgerRow struct {
	Date         time.Time       `json:"date"`
	DocumentType string          `json:"documentType"`
	DocumentID   int64           `json:"documentId"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Balance      decimal.Decimal `json:"balance"`
}

// AccountLedger is the libro mayor for one account over a date range.
type AccountLedger struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Opening     decimal.Decimal `json:"opening"`
	Rows        []LedgerRow     `json:"rows"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Closing     decimal.Decimal `json:"closing"`
}

// BuildAccountLedger walks one account's movements chronologically from the
// opening balance, carrying a debtor-signed running balance.
func BuildAccountLedger(opening decimal.Decimal, lines []ledger.Line) AccountLedger {
	sorted := make([]ledger.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	al := AccountLedger{
		Opening:     opening,
		Rows:        make([]LedgerRow, 0, len(sorted)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Closing:     opening,
	}
	for _, line := range sorted {
		if al.AccountCode == "" {
			al.AccountCode = line.AccountCode
			al.AccountName = line.AccountName
		}
		al.Closing = al.Closing.Add(line.Debit).Sub(line.Credit)
		al.TotalDebit = al.TotalDebit.Add(line.Debit)
		al.TotalCredit = al.TotalCredit.Add(line.Credit)
		al.Rows = append(al.Rows, LedgerRow{
			Date:         line.Date,
			DocumentType: string(line.DocumentType),
			DocumentID:   line.DocumentID,
			Description:  line.Description,
			Debit:        line.Debit,
			Credit:       line.Credit,
			Balance:      al.Closing,
		})
	}
	return al
}
