package secretary

import "sync/atomic"

// Stats are process-lifetime counters plus the live session count.
type Stats struct {
	TotalRequests      int64 `json:"total_requests"`
	MemoryRecoveries   int64 `json:"memory_recoveries"`
	SuccessfulBookings int64 `json:"successful_bookings"`
	CalendarQueries    int64 `json:"calendar_queries"`
	ValidationErrors   int64 `json:"validation_errors"`
	ActiveSessions     int   `json:"active_sessions"`
}

type counters struct {
	totalRequests      atomic.Int64
	memoryRecoveries   atomic.Int64
	successfulBookings atomic.Int64
	calendarQueries    atomic.Int64
	validationErrors   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalRequests:      c.totalRequests.Load(),
		MemoryRecoveries:   c.memoryRecoveries.Load(),
		SuccessfulBookings: c.successfulBookings.Load(),
		CalendarQueries:    c.calendarQueries.Load(),
		ValidationErrors:   c.validationErrors.Load(),
	}
}
