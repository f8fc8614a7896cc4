package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/google/uuid"
)

// csvColumns is the expected header of an attractions CSV. The id column is
// optional; rows without one get a deterministic ID from their name and city.
var csvColumns = []string{
	"city_name", "attraction_name", "attraction_type", "location",
	"address", "price", "currency", "open_hours", "things_to_do",
}

// ReadCSV parses attraction rows from r. Rows with an unparseable price are
// reported in the skipped slice rather than aborting the whole file.
func ReadCSV(r io.Reader) (rows []domain.AttractionRow, skipped []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"city_name", "attraction_name"} {
		if _, ok := col[required]; !ok {
			return nil, nil, fmt.Errorf("csv: missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	for line := 2; ; line++ {
		record, rerr := reader.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, nil, fmt.Errorf("csv: line %d: %w", line, rerr)
		}

		row := domain.AttractionRow{
			ID:          field(record, "id"),
			Name:        field(record, "attraction_name"),
			City:        field(record, "city_name"),
			Type:        field(record, "attraction_type"),
			Location:    field(record, "location"),
			Address:     field(record, "address"),
			Currency:    field(record, "currency"),
			OpenHours:   field(record, "open_hours"),
			Description: field(record, "things_to_do"),
		}

		if priceStr := field(record, "price"); priceStr != "" {
			price, perr := strconv.ParseFloat(priceStr, 64)
			if perr != nil {
				skipped = append(skipped, fmt.Sprintf("line %d (%s): bad price %q", line, row.Name, priceStr))
				continue
			}
			row.Price = &price
		}

		if row.ID == "" {
			row.ID = rowID(row)
		}

		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// rowID derives a stable identifier from the attraction's name and city, so
// repeated loads of the same CSV don't mint new identities.
func rowID(row domain.AttractionRow) string {
	key := strings.ToLower(row.Name + "|" + row.City)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
