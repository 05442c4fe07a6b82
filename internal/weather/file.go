package weather

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pv-simulator/internal/model"
)

// LoadFile reads a TMY from disk, choosing the format by extension (.json or .csv).
func LoadFile(path string) (*model.Weather, error) {
	var (
		w   *model.Weather
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		w, err = LoadJSON(path)
	case ".csv":
		w, err = LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported weather file %s: want .json or .csv", path)
	}
	if err != nil {
		return nil, err
	}
	w.Meta.Source = model.SourceFile
	return w, nil
}

// LoadJSON reads a document in the PVGIS TMY shape.
func LoadJSON(path string) (*model.Weather, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weather file: %w", err)
	}
	defer f.Close()
	w, err := ParseTMY(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// LoadCSV reads 8760 rows with a header naming at least a ghi column;
// a temperature column is optional.
func LoadCSV(path string) (*model.Weather, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weather file: %w", err)
	}
	defer f.Close()
	w, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func ReadCSV(r io.Reader) (*model.Weather, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	ghiCol, tempCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ghi", "g(h)":
			ghiCol = i
		case "temperature", "t2m":
			tempCol = i
		}
	}
	if ghiCol < 0 {
		return nil, fmt.Errorf("missing ghi column")
	}

	ghi := make(model.Series, 0, model.HoursPerYear)
	var temp model.Series
	if tempCol >= 0 {
		temp = make(model.Series, 0, model.HoursPerYear)
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		g, err := strconv.ParseFloat(rec[ghiCol], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: ghi: %w", line, err)
		}
		ghi = append(ghi, g)
		if temp != nil {
			t, err := strconv.ParseFloat(rec[tempCol], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: temperature: %w", line, err)
			}
			temp = append(temp, t)
		}
	}

	w := &model.Weather{GHI: ghi, Temperature: temp}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	w.Meta = model.WeatherMetadata{
		AnnualIrradiation: w.AnnualIrradiation(),
		RetrievedAt:       time.Now().UTC(),
	}
	return w, nil
}

// WriteCSV writes w in the layout ReadCSV accepts.
func WriteCSV(out io.Writer, w *model.Weather) error {
	cw := csv.NewWriter(out)
	header := []string{"hour", "ghi"}
	if w.Temperature != nil {
		header = append(header, "temperature")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for h, g := range w.GHI {
		rec := []string{strconv.Itoa(h), strconv.FormatFloat(g, 'f', 2, 64)}
		if w.Temperature != nil {
			rec = append(rec, strconv.FormatFloat(w.Temperature[h], 'f', 2, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes w to path, creating parent directories.
func SaveCSV(path string, w *model.Weather) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create weather file: %w", err)
	}
	if err := WriteCSV(f, w); err != nil {
		f.Close()
		return fmt.Errorf("failed to write weather file: %w", err)
	}
	return f.Close()
}
