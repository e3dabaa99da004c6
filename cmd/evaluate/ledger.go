package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/raterudder/retrofit/pkg/types"
)

var ledgerHeader = []string{
	"scenario",
	"asset",
	"year",
	"generationOrLoad",
	"revenue",
	"ownerBenefit",
	"opex",
	"tax",
	"netCashFlow",
	"cumulativeCashFlow",
}

// writeLedger writes one row per projected year of every result.
func writeLedger(w io.Writer, results []types.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, res := range results {
		for _, y := range res.Years {
			row := []string{
				res.ScenarioID,
				string(res.Asset),
				strconv.Itoa(y.Year),
				formatFloat(y.GenerationOrLoad),
				formatFloat(y.Revenue),
				formatFloat(y.OwnerBenefit),
				formatFloat(y.Opex),
				formatFloat(y.Tax),
				formatFloat(y.NetCashFlow),
				formatFloat(y.CumulativeCashFlow),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write ledger row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
