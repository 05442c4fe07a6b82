package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var hourlyHeader = []string{
	"hour",
	"day",
	"hour_of_day",
	"production_kwh",
	"consumption_kwh",
	"self_kwh",
	"export_kwh",
	"import_kwh",
	"soc_kwh",
}

// WriteHourly writes rows as CSV with a header. soc_kwh is empty when no battery ran.
func WriteHourly(out io.Writer, rows []HourRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(hourlyHeader); err != nil {
		return err
	}
	for _, r := range rows {
		soc := ""
		if r.SOCKWh != nil {
			soc = fmtFloat(*r.SOCKWh)
		}
		row := []string{
			strconv.Itoa(r.Hour),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.HourOfDay),
			fmtFloat(r.ProductionKWh),
			fmtFloat(r.ConsumptionKWh),
			fmtFloat(r.SelfKWh),
			fmtFloat(r.ExportKWh),
			fmtFloat(r.ImportKWh),
			soc,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func WriteHourlyCSV(path string, rows []HourRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteHourly(f, rows)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
