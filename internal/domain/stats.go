package domain

// OverviewStats are the headline numbers of the dashboard home page.
// Event and click counts cover a trailing window, see StatsService.
type OverviewStats struct {
	TotalBrands int64 `json:"totalBrands"`
	TotalLinks  int64 `json:"totalLinks"`
	ActiveLinks int64 `json:"activeLinks"`
	TotalEvents int64 `json:"totalEvents"`
	TotalClicks int64 `json:"totalClicks"`
}

// DailyCount is the number of events on one UTC day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// CountryCount is the number of events attributed to one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// EventTypeCount is the number of events of one type.
type EventTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}
