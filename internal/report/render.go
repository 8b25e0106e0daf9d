package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}

	return "text/plain; charset=utf-8"
}

// Write renders the report in the given format.
func Write(w io.Writer, u *FundUsage, f Format) error {
	switch f {
	case FormatText, "":
		return WriteText(w, u)
	case FormatCSV:
		return WriteCSV(w, u)
	}

	return fmt.Errorf("unknown report format %q", f)
}

func fundRow(f FundLine) []string {
	return []string{
		f.FundSource,
		strconv.Itoa(f.Orders),
		FormatCents(f.Awaiting),
		FormatCents(f.Held),
		FormatCents(f.Released),
	}
}

var fundHeader = []string{"Fund source", "Orders", "Awaiting", "Held", "Released"}

func WriteText(w io.Writer, u *FundUsage) error {
	if _, err := fmt.Fprintf(w, "Fund usage for %s (generated %s)\n\n",
		u.Charity, u.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	funds := tablewriter.NewWriter(w)
	funds.Header(fundHeader)

	for _, f := range u.Funds {
		if err := funds.Append(fundRow(f)); err != nil {
			return fmt.Errorf("appending fund row: %w", err)
		}
	}

	if err := funds.Append(fundRow(u.Totals())); err != nil {
		return fmt.Errorf("appending totals: %w", err)
	}

	if err := funds.Render(); err != nil {
		return fmt.Errorf("rendering funds: %w", err)
	}

	if u.Rejected > 0 {
		if _, err := fmt.Fprintf(w, "%d rejected order(s) not counted.\n", u.Rejected); err != nil {
			return err
		}
	}

	if len(u.Campaigns) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	camps := tablewriter.NewWriter(w)
	camps.Header([]string{"Campaign", "Goal", "Raised", "Deadline"})

	for _, c := range u.Campaigns {
		row := []string{c.Title, FormatCents(c.Goal), FormatCents(c.Raised), c.Deadline.Format(time.DateOnly)}
		if err := camps.Append(row); err != nil {
			return fmt.Errorf("appending campaign row: %w", err)
		}
	}

	if err := camps.Render(); err != nil {
		return fmt.Errorf("rendering campaigns: %w", err)
	}

	return nil
}

// WriteCSV emits one section per table, separated by a blank line.
func WriteCSV(w io.Writer, u *FundUsage) error {
	cw := csv.NewWriter(w)

	records := [][]string{fundHeader}
	for _, f := range u.Funds {
		records = append(records, fundRow(f))
	}

	records = append(records, fundRow(u.Totals()))

	if len(u.Campaigns) > 0 {
		records = append(records, nil, []string{"Campaign", "Goal", "Raised", "Deadline"})

		for _, c := range u.Campaigns {
			records = append(records, []string{
				c.Title, FormatCents(c.Goal), FormatCents(c.Raised), c.Deadline.Format(time.DateOnly),
			})
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}
