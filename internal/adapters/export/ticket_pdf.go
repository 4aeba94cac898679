package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"eventhub/internal/domain"
)

type ticketRenderer struct{}

// NewTicketRenderer returns a renderer producing single-page A5 PDF tickets.
func NewTicketRenderer() domain.TicketRenderer {
	return ticketRenderer{}
}

func (ticketRenderer) PDF(reg *domain.Registration, event *domain.Event, attendee *domain.User, qrPNG []byte) ([]byte, error) {
	if reg == nil || event == nil {
		return nil, fmt.Errorf("render ticket: missing registration or event")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, tr(event.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, event.Date.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(event.Location), "", 1, "L", false, 0, "")
	if attendee != nil {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Attendee: %s <%s>", attendee.Name, attendee.Email)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Registration: "+reg.ID, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(qrPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", 34, pdf.GetY(), 80, 80, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 84)
	}

	pdf.SetFont("Courier", "", 7)
	pdf.MultiCell(0, 4, reg.TicketToken, "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), nil
}
