package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/strozynskiw/transponster/internal/engine"
	"github.com/strozynskiw/transponster/internal/ledger"
	"github.com/strozynskiw/transponster/internal/money"
)

// inputHeader is the expected input header row. The fourth "amount" column
// is optional - dispute-only files may omit it.
var inputHeader = []string{"type", "client", "tx", "amount"}

// CSVReader decodes the CSV input format into engine records, streaming one
// row at a time. A malformed header or row is fatal: the reader returns an
// error other than io.EOF and the run aborts.
type CSVReader struct {
	csv        *csv.Reader
	readHeader bool
	line       int
}

// NewCSVReader creates a record reader over CSV input.
//
// Rows may have three fields (dispute, resolve, chargeback) or four
// (deposit, withdrawal); whitespace around fields is ignored.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // amount column is optional per row
	cr.TrimLeadingSpace = true
	return &CSVReader{csv: cr}
}

// Read implements engine.RecordReader.
func (r *CSVReader) Read() (engine.Record, error) {
	if !r.readHeader {
		if err := r.checkHeader(); err != nil {
			return engine.Record{}, err
		}
		r.readHeader = true
	}

	fields, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return engine.Record{}, io.EOF
		}
		return engine.Record{}, fmt.Errorf("read input row: %w", err)
	}
	r.line++

	rec, err := parseRecord(fields)
	if err != nil {
		return engine.Record{}, fmt.Errorf("input row %d: %w", r.line, err)
	}
	return rec, nil
}

// checkHeader consumes and validates the header row.
func (r *CSVReader) checkHeader() error {
	fields, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("missing input header")
		}
		return fmt.Errorf("read input header: %w", err)
	}

	if len(fields) < 3 || len(fields) > len(inputHeader) {
		return fmt.Errorf("malformed input header %q", strings.Join(fields, ","))
	}
	for i, field := range fields {
		if strings.ToLower(strings.TrimSpace(field)) != inputHeader[i] {
			return fmt.Errorf("malformed input header %q", strings.Join(fields, ","))
		}
	}

	return nil
}

func parseRecord(fields []string) (engine.Record, error) {
	if len(fields) < 3 {
		return engine.Record{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	for i, field := range fields {
		fields[i] = strings.TrimSpace(field)
	}

	op, err := engine.ParseOp(strings.ToLower(fields[0]))
	if err != nil {
		return engine.Record{}, err
	}

	client, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return engine.Record{}, fmt.Errorf("parse client id %q: %w", fields[1], err)
	}

	tx, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return engine.Record{}, fmt.Errorf("parse transaction id %q: %w", fields[2], err)
	}

	rec := engine.Record{
		Op:     op,
		Client: ledger.ClientID(client),
		Tx:     ledger.TxID(tx),
	}

	// An explicitly absent amount (missing or empty column) is legal for
	// the non-monetary record kinds; the engine rejects monetary records
	// without one.
	if len(fields) > 3 && fields[3] != "" {
		amount, err := money.Parse(fields[3])
		if err != nil {
			return engine.Record{}, err
		}
		rec.Amount = &amount
	}

	return rec, nil
}
