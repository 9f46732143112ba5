package dataset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column names referenced by the pipelines.
const (
	ColMonth    = "Month"
	ColOutlet   = "Outlet"
	ColSales    = "Sales_Lakhs"
	ColAge      = "Age"
	ColPrice    = "Price"
	ColCity     = "City"
	ColOccasion = "Occasion"
	ColChannel  = "Channel"
)

// SalesRecord is one outlet's revenue for one month, in lakhs.
type SalesRecord struct {
	Month  time.Time
	Outlet string
	Sales  decimal.Decimal
}

// Transaction is one customer purchase.
type Transaction struct {
	Age      float64
	Price    decimal.Decimal
	City     string
	Occasion string
	Channel  string
}

// LoadSales reads path and converts each row into a SalesRecord.
func LoadSales(path string, opt Options) ([]SalesRecord, error) {
	t, err := ReadTable(path, opt)
	if err != nil {
		return nil, err
	}
	return SalesFromTable(t, opt)
}

// SalesFromTable converts an already loaded table.
func SalesFromTable(t *Table, opt Options) ([]SalesRecord, error) {
	if len(t.Header) == 0 {
		return nil, nil
	}
	idx, err := t.Require(ColMonth, ColOutlet, ColSales)
	if err != nil {
		return nil, err
	}
	out := make([]SalesRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		m, err := ParseMonth(row[idx[0]])
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: ColMonth, Value: row[idx[0]], Err: err}
		}
		s, err := ParseDecimal(row[idx[2]], opt)
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: ColSales, Value: row[idx[2]], Err: err}
		}
		out = append(out, SalesRecord{Month: m, Outlet: strings.TrimSpace(row[idx[1]]), Sales: s})
	}
	return out, nil
}

// TransactionTable keeps the typed rows next to the raw table they came from,
// so the describe step can still see every column.
type TransactionTable struct {
	Raw  *Table
	Rows []Transaction
}

// LoadTransactions reads path and converts each row into a Transaction.
func LoadTransactions(path string, opt Options) (*TransactionTable, error) {
	t, err := ReadTable(path, opt)
	if err != nil {
		return nil, err
	}
	return TransactionsFromTable(t, opt)
}

// TransactionsFromTable converts an already loaded table.
func TransactionsFromTable(t *Table, opt Options) (*TransactionTable, error) {
	tt := &TransactionTable{Raw: t}
	if len(t.Header) == 0 {
		return tt, nil
	}
	idx, err := t.Require(ColAge, ColPrice, ColCity, ColOccasion, ColChannel)
	if err != nil {
		return nil, err
	}
	tt.Rows = make([]Transaction, 0, len(t.Rows))
	for i, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		age, err := ParseNumber(row[idx[0]], opt)
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: ColAge, Value: row[idx[0]], Err: err}
		}
		price, err := ParseDecimal(row[idx[1]], opt)
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: ColPrice, Value: row[idx[1]], Err: err}
		}
		tt.Rows = append(tt.Rows, Transaction{
			Age:      age,
			Price:    price,
			City:     strings.TrimSpace(row[idx[2]]),
			Occasion: strings.TrimSpace(row[idx[3]]),
			Channel:  strings.TrimSpace(row[idx[4]]),
		})
	}
	return tt, nil
}

// Features returns the (Age, Price) matrix used for clustering, row-major.
func (tt *TransactionTable) Features() [][]float64 {
	out := make([][]float64, len(tt.Rows))
	for i, r := range tt.Rows {
		out[i] = []float64{r.Age, r.Price.InexactFloat64()}
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
