package utils

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Usage of an edge by a flow, in [0, 1]; zero for edges without capacity
func Usage(e core.Edge, flow float64) float64 {
	if e.Capacity <= 0 {
		return 0
	}
	return flow / e.Capacity
}

// RenderFlowTable writes one row per edge with its flow and usage
func RenderFlowTable(w io.Writer, network *core.Network, flows core.FlowAssignment) error {
	var table = tablewriter.NewWriter(w)
	table.Header("From", "To", "Capacity", "Cost", "Flow", "Usage")

	for _, e := range network.Edges() {
		flow := flows.Flow(e.ID)
		if err := table.Append([]string{
			string(e.From),
			string(e.To),
			formatFloat(e.Capacity),
			formatFloat(e.Cost),
			formatFloat(flow),
			fmt.Sprintf("%.1f%%", 100*Usage(e, flow)),
		}); err != nil {
			return fmt.Errorf("flow row %s: %w", e, err)
		}
	}
	return table.Render()
}

// RenderAllocationTable writes one row per allocated sink followed by the unsatisfied demands
func RenderAllocationTable(w io.Writer, allocation *core.Allocation, unsatisfied []core.UnsatisfiedDemand) error {
	var table = tablewriter.NewWriter(w)
	table.Header("Sink", "Quantity", "Status")

	for _, sink := range allocation.Sinks() {
		q, _ := allocation.Quantity(sink)
		if err := table.Append([]string{string(sink), formatFloat(q), "allocated"}); err != nil {
			return fmt.Errorf("allocation row %s: %w", sink, err)
		}
	}
	for _, u := range unsatisfied {
		if err := table.Append([]string{string(u.Sink), formatFloat(u.Quantity), "unsatisfied"}); err != nil {
			return fmt.Errorf("unsatisfied row %s: %w", u.Sink, err)
		}
	}
	return table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
