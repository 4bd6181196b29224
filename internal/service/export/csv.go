package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"ETFSheet/internal/domain/models"
)

// Header is the exported CSV column set, in order.
var Header = []string{
	"ETF Ticker", "ETF Name", "Group", "Close",
	"Daily Return (%)", "Weekly Return (%)", "Monthly Return (%)",
	"YTD Return (%)", "22 Days Return (%)", "132 Days Return (%)",
	"264 Days Return (%)",
	"Ultra-Short Vol (%)", "Short-term Vol (%)", "Long-term Vol (%)",
	"MDD (%)", "52W High Drawdown (%)", "Sharpe Ratio",
	"Base Date", "Weekly Base Date", "Monthly Base Date",
}

// SheetCSV renders the sheet as CSV with numeric fields rounded to two
// decimal places, one row per record in sheet order.
func SheetCSV(sheet *models.Sheet) ([]byte, error) {
	if sheet == nil {
		return nil, fmt.Errorf("nil sheet")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, r := range sheet.Records {
		row := []string{
			r.Ticker, r.Name, r.Group, f2(r.LatestClose),
			f2(r.DailyReturn), f2(r.WeeklyReturn), f2(r.MonthlyReturn),
			f2(r.YTDReturn), f2(r.Days22Return), f2(r.Days132Return),
			f2(r.Days264Return),
			f2(r.UltraShortVol), f2(r.ShortTermVol), f2(r.LongTermVol),
			f2(r.MDD), f2(r.High52WDD), f2(r.SharpeRatio),
			r.BaseDate, r.WeeklyBaseDate, r.MonthlyBaseDate,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %s: %w", r.Ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
