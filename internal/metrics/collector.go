// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Stage names for the collector, one per pipeline step. StageLLM and
// StageDBQuery aggregate raw model calls and database round trips across
// whichever pipeline step issued them.
const (
	StageExtract    = "extract"
	StageChunk      = "chunk"
	StageEmbed      = "embed"
	StageIndexBuild = "index_build"
	StageRewrite    = "rewrite"
	StageRetrieve   = "retrieve"
	StageGenerate   = "generate"
	StageLLM        = "llm"
	StageDBQuery    = "db_query"
)

// StageMetrics holds aggregated metrics for a single pipeline stage.
type StageMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics, only populated for model-backed stages.
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// StageSnapshot provides computed stats from raw stage metrics.
type StageSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	TotalInputTokens  *int64   `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int64   `json:"total_output_tokens,omitempty"`
	AvgOutputTokens   *float64 `json:"avg_output_tokens,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`

	ChatTurns       int64 `json:"chat_turns"`
	FallbackAnswers int64 `json:"fallback_answers"`
	Uploads         int64 `json:"uploads"`
	IndexBuilds     int64 `json:"index_builds"`

	Stages map[string]*StageSnapshot `json:"stages"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are safe for concurrent use.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	stages    map[string]*StageMetrics

	chatTurns       int64
	fallbackAnswers int64
	uploads         int64
	indexBuilds     int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		stages:    make(map[string]*StageMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a stage.
// Caller must hold the write lock.
func (c *Collector) getOrCreate(stage string) *StageMetrics {
	m, ok := c.stages[stage]
	if !ok {
		m = &StageMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.stages[stage] = m
	}
	return m
}

// RecordTiming records one run of a pipeline stage.
func (c *Collector) RecordTiming(stage string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(stage)
	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordModelUsage records timing and token usage for a model-backed stage.
func (c *Collector) RecordModelUsage(stage string, duration time.Duration, inputTokens, outputTokens int64) {
	c.RecordTiming(stage, duration)

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(stage)
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
}

// RecordChatTurn counts one completed chat turn; fallback marks turns
// answered with the no-context fallback.
func (c *Collector) RecordChatTurn(fallback bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chatTurns++
	if fallback {
		c.fallbackAnswers++
	}
}

// RecordUpload counts one accepted document upload.
func (c *Collector) RecordUpload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploads++
}

// RecordIndexBuild counts one completed index build.
func (c *Collector) RecordIndexBuild() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexBuilds++
}

// snapshotStage creates a snapshot for a stage, returning nil if no data.
func snapshotStage(m *StageMetrics) *StageSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &StageSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if m.TotalInputTokens > 0 || m.TotalOutputTokens > 0 {
		totalIn := m.TotalInputTokens
		totalOut := m.TotalOutputTokens
		avgOut := float64(m.TotalOutputTokens) / float64(m.Count)

		snap.TotalInputTokens = &totalIn
		snap.TotalOutputTokens = &totalOut
		snap.AvgOutputTokens = &avgOut
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stages := make(map[string]*StageSnapshot, len(c.stages))
	for name, m := range c.stages {
		if snap := snapshotStage(m); snap != nil {
			stages[name] = snap
		}
	}

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),

		ChatTurns:       c.chatTurns,
		FallbackAnswers: c.fallbackAnswers,
		Uploads:         c.uploads,
		IndexBuilds:     c.indexBuilds,

		Stages: stages,
	}
}
