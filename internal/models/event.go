package models

type ReportExportedEvent struct {
	RunID       string `json:"run_id"`
	Format      string `json:"format"`
	Location    string `json:"location"`
	Students    int    `json:"students"`
	Submissions int    `json:"submissions"`
	Files       int    `json:"files"`
	Timestamp   int64  `json:"timestamp"`
}
