package export

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"hr-admin-backend/internal/usecase/approval"
)

func WriteCSV(w io.Writer, items []approval.ApprovalDTO) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, item := range items {
		if err := cw.Write(Row(item)); err != nil {
			return errors.Wrapf(err, "write csv row %s", item.ApprovalID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
