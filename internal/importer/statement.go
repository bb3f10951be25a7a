package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/expenso-dev/expenso/internal/classify"
	"github.com/expenso-dev/expenso/internal/fields"
	"github.com/expenso-dev/expenso/internal/logger"
	"github.com/expenso-dev/expenso/internal/model"
)

// DefaultStatementSource tags transactions parsed from statements.
const DefaultStatementSource = "Bank Statement"

// maxLineBytes bounds a single statement row; longer rows are skipped.
const maxLineBytes = 1 << 20

type columnRole int

const (
	roleNone columnRole = iota
	roleDate
	roleDescription
	roleDebit
	roleCredit
	roleBalance
)

// headerSynonyms are tested in order against each header cell; a cell takes
// the first role that matches. A later cell matching the same role replaces
// an earlier one.
var headerSynonyms = []struct {
	role     columnRole
	keywords []string
}{
	{roleDate, []string{"date", "txn date", "transaction date"}},
	{roleDescription, []string{"description", "narration", "particulars", "remarks"}},
	{roleDebit, []string{"debit", "withdrawal", "paid", "amount debited"}},
	{roleCredit, []string{"credit", "deposit", "received", "amount credited"}},
	{roleBalance, []string{"balance", "closing"}},
}

// balanceRowMarkers identify summary rows that are not transactions.
var balanceRowMarkers = []string{"opening balance", "closing balance"}

// columns holds detected column indexes; -1 means not detected.
type columns struct {
	date, description, debit, credit, balance int
}

func detectColumns(header []string) columns {
	cols := columns{date: -1, description: -1, debit: -1, credit: -1, balance: -1}
	for i, cell := range header {
		switch headerRole(cell) {
		case roleDate:
			cols.date = i
		case roleDescription:
			cols.description = i
		case roleDebit:
			cols.debit = i
		case roleCredit:
			cols.credit = i
		case roleBalance:
			cols.balance = i
		}
	}
	return cols
}

func headerRole(cell string) columnRole {
	c := strings.ToLower(strings.TrimSpace(cell))
	for _, syn := range headerSynonyms {
		for _, kw := range syn.keywords {
			if strings.Contains(c, kw) {
				return syn.role
			}
		}
	}
	return roleNone
}

func (c columns) usable() bool {
	return c.date >= 0 && c.description >= 0
}

// StatementParser parses bank statement exports whose column layout is
// detected from the header row. The zero value is ready to use.
type StatementParser struct {
	Types  *classify.TypeClassifier // nil uses the default rules
	Source string                   // "" uses DefaultStatementSource
	Log    *zerolog.Logger          // nil disables logging
}

// Format returns the parser name.
func (p *StatementParser) Format() string { return "statement" }

var errNilReader = errors.New("nil reader")

// Parse reads a statement and returns its transactions in row order.
// Rows that cannot be turned into a transaction are logged and skipped;
// only read failures are returned as errors.
func (p *StatementParser) Parse(r io.Reader) ([]model.Transaction, error) {
	if r == nil {
		return nil, fmt.Errorf("reading statement: %w", errNilReader)
	}
	log := logger.Or(p.Log)
	types := p.Types
	if types == nil {
		types = classify.DefaultTypeClassifier()
	}
	source := p.Source
	if source == "" {
		source = DefaultStatementSource
	}

	br := bufio.NewReader(r)

	var (
		txns      []model.Transaction
		cols      columns
		haveHdr   bool
		lineNo    int
		warnedHdr bool
	)
	for {
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		if raw == "" && err == io.EOF {
			break
		}
		lineNo++
		line := strings.TrimRight(raw, "\r\n")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if len(line) > maxLineBytes {
			log.Warn().Int("line", lineNo).Int("bytes", len(line)).Msg("skipping oversized statement row")
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := splitCSVLine(line)
		if !haveHdr {
			haveHdr = true
			cols = detectColumns(cells)
			log.Debug().Int("date", cols.date).Int("description", cols.description).
				Int("debit", cols.debit).Int("credit", cols.credit).Int("balance", cols.balance).
				Msg("detected statement columns")
			continue
		}

		if !cols.usable() {
			if !warnedHdr {
				log.Warn().Msg("statement header has no date or description column, skipping all rows")
				warnedHdr = true
			}
			continue
		}

		txn, ok, err := p.parseRow(cells, cols, types, source, log, lineNo)
		if err != nil {
			log.Warn().Err(err).Int("line", lineNo).Str("row", line).Msg("skipping statement row")
			continue
		}
		if ok {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

// parseRow returns ok=false with a nil error for rows that legitimately carry
// no transaction (balance rows, zero amounts).
func (p *StatementParser) parseRow(cells []string, cols columns, types *classify.TypeClassifier, source string, log *zerolog.Logger, lineNo int) (model.Transaction, bool, error) {
	if len(cells) <= max(cols.date, cols.description) {
		return model.Transaction{}, false, fmt.Errorf("row has %d columns, need %d", len(cells), max(cols.date, cols.description)+1)
	}

	desc := strings.TrimSpace(cells[cols.description])
	if desc == "" {
		return model.Transaction{}, false, model.ErrEmptyDescription
	}
	lower := strings.ToLower(desc)
	for _, marker := range balanceRowMarkers {
		if strings.Contains(lower, marker) {
			return model.Transaction{}, false, nil
		}
	}

	date, ok := fields.Date(cells[cols.date], fields.StatementLayouts)
	if !ok {
		log.Debug().Int("line", lineNo).Str("date", cells[cols.date]).Msg("unparseable date, using today")
		date = fields.Today()
	}

	debit := amountCell(cells, cols.debit, log, lineNo)
	credit := amountCell(cells, cols.credit, log, lineNo)

	var params model.TransactionParams
	switch {
	case debit.IsPositive():
		params = model.TransactionParams{Amount: debit, Type: types.Classify(desc, true)}
	case credit.IsPositive():
		params = model.TransactionParams{Amount: credit, Type: model.TypeCredit}
	default:
		return model.Transaction{}, false, nil
	}
	params.Description = desc
	params.Date = date
	params.Source = source

	txn, err := model.NewTransaction(params)
	if err != nil {
		return model.Transaction{}, false, err
	}
	return txn, true, nil
}

func amountCell(cells []string, col int, log *zerolog.Logger, lineNo int) decimal.Decimal {
	if col < 0 || col >= len(cells) {
		return decimal.Zero
	}
	d, ok := fields.Amount(cells[col])
	if !ok && !fields.IsPlaceholder(cells[col]) {
		log.Debug().Int("line", lineNo).Str("amount", cells[col]).Msg("unparseable amount, treating as zero")
	}
	return d
}

// splitCSVLine splits a comma-separated line. Double quotes toggle quoting
// and are dropped; escaped quotes are not supported.
func splitCSVLine(line string) []string {
	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}
