// Package export serializes participant lists and renders printable tickets.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"eventhub/internal/domain"
)

const participantsSheet = "Participants"

var participantHeaders = []string{"name", "email", "registration_date", "status"}

type participantExporter struct{}

// NewParticipantExporter returns the CSV/XLSX participant exporter.
func NewParticipantExporter() domain.ParticipantExporter {
	return participantExporter{}
}

func participantRecord(p *domain.Participant) []string {
	return []string{p.Name, p.Email, p.RegisteredAt.UTC().Format(time.RFC3339), string(p.Status)}
}

// CSV writes one header row then one row per participant. Quoting of commas,
// quotes and newlines is handled by encoding/csv.
func (participantExporter) CSV(participants []*domain.Participant) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(participantHeaders); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if err := w.Write(participantRecord(p)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (participantExporter) XLSX(participants []*domain.Participant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(participantsSheet)
	if err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	for i, h := range participantHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(participantsSheet, cell, h); err != nil {
			return nil, err
		}
	}
	for rIdx, p := range participants {
		row := rIdx + 2
		for col, v := range participantRecord(p) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(participantsSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
