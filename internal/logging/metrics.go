package logging

import (
	"fmt"
	"sync"
	"time"
)

// Metrics tracks remote API calls, snapshot section decoding and analysis stages
type Metrics struct {
	StartTime     time.Time                   `json:"start_time"`
	EndTime       time.Time                   `json:"end_time"`
	Duration      string                      `json:"duration"`
	APICalls      map[string]APICallMetrics   `json:"api_calls"`
	Sections      map[string]SectionMetrics   `json:"sections"`
	Operations    map[string]OperationMetrics `json:"operations"`
	TotalAPICalls int                         `json:"total_api_calls"`
	TotalSuccess  int                         `json:"total_success"`
	TotalFailures int                         `json:"total_failures"`
	mu            sync.RWMutex
}

// APICallMetrics tracks metrics for a specific API call
type APICallMetrics struct {
	Count       int      `json:"count"`
	Success     int      `json:"success"`
	Failures    int      `json:"failures"`
	SuccessRate float64  `json:"success_rate"`
	Errors      []string `json:"errors,omitempty"`
}

// SectionMetrics tracks how one top-level snapshot section decoded
type SectionMetrics struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
}

// OperationMetrics tracks metrics for high-level operations
type OperationMetrics struct {
	Duration       time.Duration `json:"duration"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ItemsProcessed int           `json:"items_processed"`
	ItemsFound     int           `json:"items_found"`
}

// MetricsSummary is a lock-free copy of Metrics for reports.
type MetricsSummary struct {
	StartTime     time.Time                   `json:"start_time"`
	EndTime       time.Time                   `json:"end_time"`
	Duration      string                      `json:"duration"`
	APICalls      map[string]APICallMetrics   `json:"api_calls"`
	Sections      map[string]SectionMetrics   `json:"sections"`
	Operations    map[string]OperationMetrics `json:"operations"`
	TotalAPICalls int                         `json:"total_api_calls"`
	TotalSuccess  int                         `json:"total_success"`
	TotalFailures int                         `json:"total_failures"`
}

var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance (singleton)
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		StartTime:  time.Now(),
		APICalls:   make(map[string]APICallMetrics),
		Sections:   make(map[string]SectionMetrics),
		Operations: make(map[string]OperationMetrics),
	}
}

// Reset clears all recorded metrics and restarts the clock
func (m *Metrics) Reset() {
	fresh := newMetrics()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartTime = fresh.StartTime
	m.EndTime = time.Time{}
	m.Duration = ""
	m.APICalls = fresh.APICalls
	m.Sections = fresh.Sections
	m.Operations = fresh.Operations
	m.TotalAPICalls = 0
	m.TotalSuccess = 0
	m.TotalFailures = 0
}

// RecordAPICall records an API call with success/failure
func (m *Metrics) RecordAPICall(apiName string, success bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalAPICalls++
	if success {
		m.TotalSuccess++
	} else {
		m.TotalFailures++
	}

	metrics := m.APICalls[apiName]
	metrics.Count++
	if success {
		metrics.Success++
	} else {
		metrics.Failures++
		if err != nil && len(metrics.Errors) < 10 {
			metrics.Errors = append(metrics.Errors, err.Error())
		}
	}
	if metrics.Count > 0 {
		metrics.SuccessRate = float64(metrics.Success) / float64(metrics.Count) * 100
	}
	m.APICalls[apiName] = metrics
}

// RecordSection records the decode outcome of one snapshot section
func (m *Metrics) RecordSection(section string, status string, records, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sections[section] = SectionMetrics{
		Status:  status,
		Records: records,
		Skipped: skipped,
	}
}

// RecordOperation records a high-level operation
func (m *Metrics) RecordOperation(operationName string, duration time.Duration, success bool, itemsProcessed, itemsFound int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	opMetrics := OperationMetrics{
		Duration:       duration,
		Success:        success,
		ItemsProcessed: itemsProcessed,
		ItemsFound:     itemsFound,
	}
	if err != nil {
		opMetrics.Error = err.Error()
	}
	m.Operations[operationName] = opMetrics
}

// Finish stamps the end time and returns a copy safe to serialize
func (m *Metrics) Finish() MetricsSummary {
	m.mu.Lock()
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime).Round(time.Millisecond).String()
	m.mu.Unlock()

	return m.Summary()
}

// Summary returns a copy of the current metrics
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Duration:      m.Duration,
		APICalls:      make(map[string]APICallMetrics, len(m.APICalls)),
		Sections:      make(map[string]SectionMetrics, len(m.Sections)),
		Operations:    make(map[string]OperationMetrics, len(m.Operations)),
		TotalAPICalls: m.TotalAPICalls,
		TotalSuccess:  m.TotalSuccess,
		TotalFailures: m.TotalFailures,
	}
	for k, v := range m.APICalls {
		summary.APICalls[k] = v
	}
	for k, v := range m.Sections {
		summary.Sections[k] = v
	}
	for k, v := range m.Operations {
		summary.Operations[k] = v
	}
	return summary
}

// String renders a one-line digest for debug logs
func (m *Metrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("api_calls=%d failures=%d sections=%d operations=%d",
		m.TotalAPICalls, m.TotalFailures, len(m.Sections), len(m.Operations))
}
