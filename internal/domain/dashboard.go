package domain

// Overview is the data behind the staff dashboard.
type Overview struct {
	Members          int           `json:"members"`
	Visitors         int           `json:"visitors"`
	Totals           Totals        `json:"totals"`
	AssetValue       int64         `json:"asset_value"`
	PendingApprovals []Transaction `json:"pending_approvals"`
	RecentLedger     []Transaction `json:"recent_ledger"`
}

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Mode     string          `json:"mode"`   // supabase, simulation
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// FinanceMetrics is returned by GET /v1/metrics/finance.
type FinanceMetrics struct {
	TransactionsRecorded int64            `json:"transactionsRecorded"`
	PendingCreated       int64            `json:"pendingCreated"`
	Approved             int64            `json:"approved"`
	Rejected             int64            `json:"rejected"`
	SMSOutcomes          map[string]int64 `json:"smsOutcomes"`
	CacheHitRate         float64          `json:"cacheHitRate"`
}
