package battery

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var ledgerHeader = []string{
	"index",
	"day",
	"hour",
	"production_kwh",
	"consumption_kwh",
	"action",
	"direct_self_kwh",
	"charged_kwh",
	"stored_kwh",
	"discharged_kwh",
	"export_kwh",
	"import_kwh",
	"soc_start",
	"soc_end",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

// WriteLedger streams the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.HourOfDay),
			fmtFloat(r.ProductionKWh),
			fmtFloat(r.ConsumptionKWh),
			string(r.Action),
			fmtFloat(r.DirectSelfKWh),
			fmtFloat(r.ChargedKWh),
			fmtFloat(r.StoredKWh),
			fmtFloat(r.DischargedKWh),
			fmtFloat(r.ExportKWh),
			fmtFloat(r.ImportKWh),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
