// Package statement parses credit card statement CSV exports into
// transaction parameters.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/cardcycle/internal/encoding"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

// Options carries what the file itself does not: whose rows these are, the
// card they were charged to and their currency.
type Options struct {
	UserID   uuid.UUID
	CardID   *uuid.UUID
	Currency string
	// Location dates are read in; nil means UTC.
	Location *time.Location
}

// Parser reads statement CSV files. With no profile set it tries every
// known profile and keeps the first whose header is found.
type Parser struct {
	profile *Profile
}

func NewParser() *Parser {
	return &Parser{}
}

// NewProfileParser only accepts files in the named layout.
func NewProfileParser(name string) (*Parser, error) {
	p, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}

	return &Parser{profile: &p}, nil
}

func (p *Parser) Parse(r io.Reader, opts Options) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	candidates := profiles
	if p.profile != nil {
		candidates = []Profile{*p.profile}
	}

	for i := range candidates {
		prof := &candidates[i]

		rows, err := readRows(data, prof.Comma)
		if err != nil {
			continue
		}

		cols, headerIdx, ok := findHeader(prof, rows)
		if !ok {
			continue
		}

		return parseRows(prof, cols, rows[headerIdx+1:], headerIdx+1, opts)
	}

	return nil, fmt.Errorf("%w: expected one of %s", ErrUnknownFormat, strings.Join(Names(), ", "))
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	return reader.ReadAll()
}

type colIndex map[string]int

// findHeader returns the first row carrying every column the profile needs.
func findHeader(p *Profile, rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex, len(row))

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		matched := true

		for _, name := range p.requiredCols() {
			if _, ok := cols[name]; !ok {
				matched = false
				break
			}
		}

		if matched {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int, opts Options) ([]transaction.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var out []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(p, cellValue(row, dateIdx), opts.Location)
		if !ok {
			// Footers, totals and blank lines.
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, typ, ok, err := rowAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if !ok {
			continue
		}

		out = append(out, transaction.CreateParams{
			UserID:         opts.UserID,
			CardID:         opts.CardID,
			Type:           typ,
			Amount:         amount,
			Currency:       opts.Currency,
			Description:    desc,
			RawDescription: desc,
			Date:           date,
		})
	}

	return out, nil
}

func parseDate(p *Profile, s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range p.DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// rowAmount returns ok=false for rows carrying no amount at all.
func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, bool, error) {
	if p.AmountMode == amountSplit {
		if s := cellValue(row, cols[p.DebitCol]); s != "" {
			d, err := parseAmount(s, p.DecimalComma)
			if err != nil {
				return decimal.Zero, "", false, fmt.Errorf("debit %q: %w", s, err)
			}

			if !d.IsZero() {
				return d.Abs(), transaction.TypeExpense, true, nil
			}
		}

		if s := cellValue(row, cols[p.CreditCol]); s != "" {
			d, err := parseAmount(s, p.DecimalComma)
			if err != nil {
				return decimal.Zero, "", false, fmt.Errorf("credit %q: %w", s, err)
			}

			if !d.IsZero() {
				return d.Abs(), transaction.TypeIncome, true, nil
			}
		}

		return decimal.Zero, "", false, nil
	}

	s := cellValue(row, cols[p.AmountCol])
	if s == "" {
		return decimal.Zero, "", false, nil
	}

	d, err := parseAmount(s, p.DecimalComma)
	if err != nil {
		return decimal.Zero, "", false, fmt.Errorf("amount %q: %w", s, err)
	}

	switch d.Sign() {
	case 0:
		return decimal.Zero, "", false, nil
	case -1:
		return d.Neg(), transaction.TypeExpense, true, nil
	}

	return d, transaction.TypeIncome, true, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
