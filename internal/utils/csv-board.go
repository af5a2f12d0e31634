package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// ReadBoardFile loads a board definition: one "color,count" record per line.
// Malformed records are skipped; a file with no usable record is an error.
func ReadBoardFile(filePath string) ([]internal.ColorCount, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read board file %s: %w", filePath, err)
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse board file %s as CSV: %w", filePath, err)
	}

	var counts []internal.ColorCount
	for _, record := range records {
		if len(record) < 2 {
			log.Warn().Strs("record", record).Msg("skipping invalid board record")
			continue
		}
		color := strings.TrimSpace(record[0])
		count, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil || color == "" || count <= 0 {
			log.Warn().Strs("record", record).Msg("skipping invalid board record")
			continue
		}

		counts = append(counts, internal.ColorCount{
			Color: internal.Color(color),
			Count: count,
		})
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("board file %s has no usable records", filePath)
	}
	return counts, nil
}
