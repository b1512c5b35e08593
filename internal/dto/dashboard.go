package dto

// DashboardOverview summarizes response activity for a scope and window.
type DashboardOverview struct {
	TotalResponses  int     `json:"total_responses"`
	TotalForms      int     `json:"total_forms"`
	ActiveUsers     int     `json:"active_users"`
	AvgResponseTime float64 `json:"avg_response_time_minutes"`
	CompletionRate  float64 `json:"completion_rate"`
}

// BucketCount is one aggregation bucket with a display label. Label
// truncation never affects Key.
type BucketCount struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardResponse is the full dashboard payload.
type DashboardResponse struct {
	CompanyID    string        `json:"company_id,omitempty"`
	DepartmentID string        `json:"department_id,omitempty"`
	Overview     DashboardOverview `json:"overview"`
	ByDay        []BucketCount `json:"by_day"`
	ByForm       []BucketCount `json:"by_form"`
	ByUser       []BucketCount `json:"by_user"`
	ByHour       []BucketCount `json:"by_hour"`
}
