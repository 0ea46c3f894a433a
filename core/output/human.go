package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/sunxiaoguang/serverless-cost-calculator/core/calculator"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
)

var (
	boldGreen  = color.New(color.Bold, color.FgGreen)
	boldYellow = color.New(color.Bold, color.FgYellow)
	boldRed    = color.New(color.Bold, color.FgRed)
)

var humanReportNotes = []string{
	"* Request units are estimated based on statistical data from the past, up to seven days. Be cautious: severe fluctuations in recent workload, such as ingesting a large volume of data, can skew the final estimation.",
	"* The storage size is estimated from statistical data, which differs from the actual data size.",
	"* TiDB Serverless encodes data differently from MySQL, resulting in slightly different storage consumption.",
	"* The TiDB Serverless storage size meter does not account for data compression or replicas.",
	"* For detailed pricing information, visit https://www.pingcap.com/tidb-serverless-pricing-details",
	"* For additional questions, refer to the FAQs on https://docs.pingcap.com/tidbcloud/serverless-faqs",
}

// humanRenderer prints a colored report with a per-SKU cost table.
type humanRenderer struct {
	w io.Writer
}

func (h *humanRenderer) Warnf(format string, args ...interface{}) {
	fmt.Fprintln(h.w, boldRed.Sprintf(format, args...))
}

func (h *humanRenderer) Advisef(format string, args ...interface{}) {
	fmt.Fprintln(h.w, boldYellow.Sprintf(format, args...))
}

func (h *humanRenderer) Info(msg string) {
	fmt.Fprintln(h.w, boldGreen.Sprint(msg))
}

func (h *humanRenderer) Welcome(cfg config.Source) {
	fmt.Fprintf(h.w, "Connecting to the MySQL compatible database at '%s' as the user '%s' using the database '%s'\n",
		boldGreen.Sprintf("%s:%d", cfg.Host, cfg.Port),
		boldGreen.Sprint(cfg.User),
		boldGreen.Sprint(cfg.Database))
}

func (h *humanRenderer) Render(reports []Report) error {
	single := len(reports) == 1
	for i, report := range reports {
		if !single {
			fmt.Fprintf(h.w, "Cluster: %s\n", boldGreen.Sprintf("%d", i))
		}
		h.renderEstimation(report.Estimation)
	}

	fmt.Fprintln(h.w)
	fmt.Fprintln(h.w, boldGreen.Sprint("Notes:"))
	for _, note := range humanReportNotes {
		fmt.Fprintln(h.w, boldGreen.Sprint(note))
	}
	return nil
}

func (h *humanRenderer) renderEstimation(estimation calculator.WorkloadEstimation) {
	total := money(calculator.TotalWithCredit(estimation))
	fmt.Fprintf(h.w, "The estimated monthly cost for your workload is %s\n", boldGreen.Sprint(total))

	t := table.NewWriter()
	t.SetOutputMirror(h.w)
	t.AppendHeader(table.Row{"SKU", "Cost"})
	t.AppendRow(table.Row{"Request Units", money(estimation.RequestUnitsCost)})
	t.AppendRow(table.Row{"Row-based Storage", money(estimation.StorageCost)})
	t.AppendRow(table.Row{"Free Credits", "-" + money(estimation.FreeCredit)})
	t.AppendRow(table.Row{"Total", total})
	t.Render()
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
