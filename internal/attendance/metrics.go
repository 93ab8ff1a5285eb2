package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_marks_total",
	Help: "Attendance records created by self-marking, by status.",
}, []string{"status"})

var backfillTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "attendance_absent_backfill_total",
	Help: "Absent records created by host reconciliation.",
})
