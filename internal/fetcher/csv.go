package fetcher

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/aide-analytics/aide-cli/internal/dataset"
)

// ReadCSV reads a CSV file into a frame; the first record is the
// header. Ragged rows are tolerated.
func ReadCSV(path string) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()
	return readCSV(f, path)
}

func readCSV(r io.Reader, name string) (*dataset.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "csv: %s has no header row", name)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read %s", name)
		}
		rows = append(rows, rec)
	}
	return dataset.New(header, rows), nil
}
