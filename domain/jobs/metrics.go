package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess  = "success"
	statusNotFound = "not_found"
	statusFailed   = "failed"
)

var executions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jobber_job_executions_total",
	Help: "Job executions by job name and outcome",
}, []string{"job", "status"})
