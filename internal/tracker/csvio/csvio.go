// Package csvio serializes application records to CSV and parses CSV text
// back into raw rows for bulk import.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jvaldes/apptrack/internal/tracker/domain"
)

// Header is the fixed export column order. Import accepts any column order
// but keys rows by these names.
var Header = []string{
	"id", "company", "role", "offerUrl", "applicationDate",
	"status", "notes", "followUpDate", "responseDate", "tags",
	"contactName", "contactEmail", "offeredSalary", "location", "workMode",
}

// Export writes the applications as CSV with the fixed 15-column header.
// Dates are rendered as YYYY-MM-DD, absent dates as empty strings.
func Export(w io.Writer, apps []domain.Application) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, app := range apps {
		record := []string{
			strconv.FormatInt(app.ID, 10),
			app.Company,
			app.Role,
			app.OfferURL,
			app.ApplicationDate.Format(domain.DateLayout),
			app.Status.String(),
			app.Notes,
			domain.FormatDate(app.FollowUpDate),
			domain.FormatDate(app.ResponseDate),
			app.Tags,
			app.ContactName,
			app.ContactEmail,
			app.OfferedSalary,
			app.Location,
			app.WorkMode,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Parse reads CSV text and returns one header-keyed map per data row, the
// shape the store's BulkImport expects. Short rows are padded with empty
// values; extra columns are ignored.
func Parse(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
