// Package export renders approval lists as CSV or XLSX. Both formats are
// built from the same header and row functions so a file always matches
// the list endpoint row for row.
package export

import (
	"strings"
	"time"

	"hr-admin-backend/internal/usecase/approval"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	dateLayout = "2006-01-02 15:04:05"
)

var Headers = []string{
	"Approval ID",
	"Type",
	"Title",
	"Description",
	"Amount",
	"Currency",
	"Status",
	"Priority",
	"Submitter",
	"Approver",
	"Submitted Date",
	"Approved Date",
	"Notes",
}

// Row flattens an approval into the cell values shared by every format.
func Row(a approval.ApprovalDTO) []string {
	var amount, submitter, approver, approved, notes string
	if a.Amount != nil {
		amount = *a.Amount
	}
	if a.Submitter != nil {
		submitter = a.Submitter.Name
	}
	if a.Approver != nil {
		approver = a.Approver.Name
	}
	if a.ApprovedDate != nil {
		approved = formatTime(*a.ApprovedDate)
	}
	if a.Notes != nil {
		notes = *a.Notes
	}
	return []string{
		a.ApprovalID,
		a.Type,
		safeCell(a.Title),
		safeCell(a.Description),
		amount,
		a.Currency,
		a.Status,
		a.Priority,
		safeCell(submitter),
		safeCell(approver),
		formatTime(a.SubmittedDate),
		approved,
		safeCell(notes),
	}
}

// safeCell quotes free text that a spreadsheet would otherwise read as a
// formula.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// ContentType returns the MIME type and file extension for a format.
func ContentType(format string) (string, bool) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", true
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	}
	return "", false
}
