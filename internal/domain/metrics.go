package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// MetricsSummary holds the four rolled-up execution figures.
type MetricsSummary struct {
	TotalExecutions int64   `json:"totalExecutions"`
	SuccessRate     float64 `json:"successRate"` // percent, 0-100
	AvgLatencyMs    float64 `json:"avgLatencyMs"`
	TotalCostUSD    float64 `json:"totalCostUsd"`
}

// RecentError is one failed execution in the dashboard error panel.
type RecentError struct {
	Agent     string    `json:"agent"`
	TaskType  string    `json:"taskType"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardMetrics is the rollup over a trailing window. The aggregate
// figures are flattened into the top-level object on the wire.
type DashboardMetrics struct {
	WindowHours int `json:"windowHours"`
	MetricsSummary
	ByAgent      map[string]MetricsSummary `json:"byAgent"`
	RecentErrors []RecentError             `json:"recentErrors"`
}

// DashboardResponse is the body of GET /api/ai/agent-metrics/dashboard.
type DashboardResponse struct {
	OK      bool             `json:"ok"`
	Metrics DashboardMetrics `json:"metrics"`
	Error   string           `json:"error,omitempty"`
}

// FormatCount renders an execution count: 42 -> "42".
func FormatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

// FormatRate renders a success rate with one decimal: 97.6 -> "97.6%".
func FormatRate(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatLatency rounds to whole milliseconds: 812.4 -> "812ms".
func FormatLatency(ms float64) string {
	return fmt.Sprintf("%dms", int64(math.Round(ms)))
}

// FormatCost renders USD with four decimals: 0.0314 -> "$0.0314".
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.4f", usd)
}
