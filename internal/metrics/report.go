package metrics

import (
	"fmt"
	"strings"
)

// FormatReport renders daily usage and system health as plain text.
func FormatReport(usage []DailyUsage, health SysHealth) string {
	var sb strings.Builder
	sb.WriteString("Usage & Health Report\n\n")

	sb.WriteString("Recent LLM activity\n")
	if len(usage) == 0 {
		sb.WriteString("  no data yet\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "  %s: %d tokens (%d execs, avg %dms)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.AvgLatencyMS)
	}

	sb.WriteString("\nSystem health\n")
	fmt.Fprintf(&sb, "  RAM: %dMB (alloc) / %dMB (sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "  Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "  Disk data: %s\n", health.DataDiskSize)
	return sb.String()
}
