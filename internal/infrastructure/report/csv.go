// Package report renders the donor report for download.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

const ContentTypeCSV = "text/csv; charset=UTF-8"

var donorHeader = []string{"idUsuario", "correoElectronico", "totalDonado", "totalDonaciones", "ultimaDonacion"}

// WriteDonorCSV writes rows as UTF-8 CSV preceded by a byte-order mark, so
// spreadsheet tools pick the right encoding.
func WriteDonorCSV(w io.Writer, rows []domain.DonorSummary) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(donorHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		donor := r.DonorID
		if donor == "" {
			donor = domain.AnonymousDonorID
		}
		record := []string{
			donor,
			r.Email,
			strconv.FormatFloat(r.TotalAmount, 'f', -1, 64),
			strconv.FormatInt(r.DonationCount, 10),
			formatTime(r.LastDonationAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return bw.Close()
}

// DonorFilename names the download after the filters that produced it, e.g.
// reporte_donantes_MATERIAL_Utiles_escolares.csv.
func DonorFilename(typ domain.DonationType, materialSubtype string) string {
	var b strings.Builder
	b.WriteString("reporte_donantes")
	if typ != "" {
		b.WriteString("_")
		b.WriteString(string(typ))
	}
	if materialSubtype != "" {
		b.WriteString("_")
		b.WriteString(strings.ReplaceAll(materialSubtype, " ", "_"))
	}
	b.WriteString(".csv")
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
