// Package report renders finished simulation runs for people and tools:
// a fixed-width Gantt timeline, a JSON document and a summary table.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inference-sim/cbs-sim/sim/trace"
)

// Legend is printed above the timelines.
const Legend = "legend: idle = _, work = =, job arrival = J, job ends = E"

const idleSymbol = '_'

var actionSymbols = map[trace.RunAction]byte{
	trace.Work:   '=',
	trace.JobEnd: 'E',
	trace.NewJob: 'J',
}

// Timeline renders one server's trace as a row of symbols, one column per
// tick, and returns the first tick after the last drawn column. Gaps are
// filled with '_'. A record whose tick was already drawn (for example the
// Work that follows a NewJob in the same tick) is not drawn again.
// Panics on a record with an unknown action.
func Timeline(st *trace.ServerTrace) (string, int64) {
	var sb strings.Builder
	var cursor int64
	for _, ev := range st.Events {
		if ev.Tick < cursor {
			continue
		}
		symbol, ok := actionSymbols[ev.Action]
		if !ok {
			panic(fmt.Sprintf("Timeline: unknown action %v at tick %d on server %s", ev.Action, ev.Tick, st.Server))
		}
		sb.WriteString(strings.Repeat(string(idleSymbol), int(ev.Tick-cursor)))
		sb.WriteByte(symbol)
		cursor = ev.Tick + 1
	}
	return sb.String(), cursor
}

// Ruler returns the tick ruler for maxTime columns: '|' on every tenth tick,
// the last digit of the tick otherwise.
func Ruler(maxTime int64) string {
	var sb strings.Builder
	for i := int64(0); i < maxTime; i++ {
		if i%10 == 0 {
			sb.WriteByte('|')
		} else {
			sb.WriteByte(byte('0' + i%10))
		}
	}
	return sb.String()
}

// Gantt writes the legend, one timeline per server and the ruler.
func Gantt(w io.Writer, traces []*trace.ServerTrace) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\n\n%s\n\n", Legend)

	var maxTime int64
	for _, st := range traces {
		line, end := Timeline(st)
		maxTime = max(maxTime, end)
		fmt.Fprintf(bw, "vCPU: %s\n%s\n\n", st.Server, line)
	}

	fmt.Fprintf(bw, "%s --> maxTime = %d\n", Ruler(maxTime), maxTime)
	return bw.Flush()
}
