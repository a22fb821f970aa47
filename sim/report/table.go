package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/inference-sim/cbs-sim/sim"
	"github.com/inference-sim/cbs-sim/sim/trace"
)

var noStyle = table.Style{
	Name:   "StyleDefault",
	Box:    table.StyleBoxDefault,
	Color:  table.ColorOptionsDefault,
	Format: table.FormatOptionsDefault,
	HTML:   table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// TableOptions controls the summary table.
type TableOptions struct {
	NoStyle    bool // Remove all styling from table output.
	HideHeader bool
}

// SummaryTable writes one row per server with its reservation, job counts,
// utilization over makespan ticks and response-time statistics.
func SummaryTable(w io.Writer, servers []*sim.CBSServer, makespan int64, options TableOptions) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	if !options.HideHeader {
		tw.AppendHeader(table.Row{"vCPU", "Q", "P", "Share", "Jobs", "Done", "Work", "Util", "Replenish", "Mean Resp", "Max Resp"})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 4, Transformer: percent},
		{Number: 8, Transformer: percent},
		{Number: 10, Transformer: ticks},
		{Number: 11, Transformer: ticks},
	})

	var work, done, jobs int
	for _, s := range servers {
		sum := trace.Summarize(s.Trace, makespan)
		tw.AppendRow(table.Row{
			s.Name(), s.VCPU.Budget, s.VCPU.Period, s.VCPU.Bandwidth(),
			sum.JobsAdmitted, sum.JobsCompleted, sum.WorkTicks, sum.Utilization,
			s.Replenishments(), sum.MeanResponse, sum.MaxResponse,
		})
		work += sum.WorkTicks
		done += sum.JobsCompleted
		jobs += sum.JobsAdmitted
	}
	if !options.HideHeader {
		tw.AppendFooter(table.Row{"total", "", "", "", jobs, done, work, "", "", "", ""})
	}

	tw.SetStyle(table.StyleLight)
	if options.NoStyle {
		tw.SetStyle(noStyle)
	}
	tw.Render()
}

func percent(val interface{}) string {
	if f, ok := val.(float64); ok {
		return fmt.Sprintf("%.1f%%", f*100)
	}
	return fmt.Sprint(val)
}

func ticks(val interface{}) string {
	if f, ok := val.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(val)
}
