package portal

// DashboardStats are the admin overview counters.
type DashboardStats struct {
	TotalReports  int `json:"total_reports"`
	ActiveClients int `json:"active_clients"`
}
