package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

var amountPrinter = message.NewPrinter(language.Korean)

// formatAmount renders an amount with thousands separators, the way the
// exported statements are read in spreadsheets.
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// WriteTrialBalanceCSV streams the trial balance as CSV.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Trial Balance FY%d", tb.FiscalYear)); err != nil {
		return err
	}
	header := []string{"Account Code", "Account Name", "Type",
		"Opening Debit", "Opening Credit", "Debit", "Credit", "Closing Debit", "Closing Credit"}
	if err := streamer.writeRow(header); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		record := []string{
			row.AccountCode,
			row.AccountName,
			row.AccountType,
			formatAmount(row.OpeningDebit),
			formatAmount(row.OpeningCredit),
			formatAmount(row.Debit),
			formatAmount(row.Credit),
			formatAmount(row.ClosingDebit),
			formatAmount(row.ClosingCredit),
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	totals := []string{"", "Total", "",
		"", "",
		formatAmount(tb.TotalDebit),
		formatAmount(tb.TotalCredit),
		formatAmount(tb.TotalClosingDebit),
		formatAmount(tb.TotalClosingCredit),
	}
	if err := streamer.writeRow(totals); err != nil {
		return err
	}
	return streamer.Flush()
}
