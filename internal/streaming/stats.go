package streaming

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"zhibo/internal/voice"
)

// Stats 运行期统计快照
type Stats struct {
	Uptime         time.Duration  `json:"uptime"`
	TotalMessages  int64          `json:"total_messages"`
	SynthCount     int64          `json:"synth_count"`
	EngineFailures map[string]int `json:"engine_failures"`
	QueueSize      int            `json:"queue_size"`
	LastLatencyMS  int64          `json:"last_latency_ms"`
	Personality    string         `json:"personality"`
	AsmrMode       string         `json:"asmr_mode"`
}

// Collector 统计采集器，消息计数自增，其余在快照时取
type Collector struct {
	start    time.Time
	messages atomic.Int64
}

func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

func (c *Collector) IncMessages() {
	c.messages.Add(1)
}

func (c *Collector) TotalMessages() int64 {
	return c.messages.Load()
}

// Snapshot 汇总当前运行状态，player可为nil
func (c *Collector) Snapshot(m *voice.Manager, p *Player) Stats {
	s := Stats{
		Uptime:        time.Since(c.start),
		TotalMessages: c.messages.Load(),
	}
	if m != nil {
		s.SynthCount = m.SynthCount()
		s.EngineFailures = m.Failures()
		s.LastLatencyMS = m.LastLatency().Milliseconds()
	}
	if p != nil {
		s.QueueSize = p.QueueSize()
	}
	return s
}

// Format 人类可读的统计文本，交互模式下直接打印
func (s Stats) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "运行时长: %s\n", s.Uptime.Round(time.Second))
	fmt.Fprintf(&b, "消息总数: %d\n", s.TotalMessages)
	fmt.Fprintf(&b, "合成次数: %d\n", s.SynthCount)
	fmt.Fprintf(&b, "播放队列: %d\n", s.QueueSize)
	fmt.Fprintf(&b, "最近延迟: %dms\n", s.LastLatencyMS)
	if s.Personality != "" {
		fmt.Fprintf(&b, "当前人设: %s\n", s.Personality)
	}
	if s.AsmrMode != "" {
		fmt.Fprintf(&b, "ASMR模式: %s\n", s.AsmrMode)
	}
	for engine, n := range s.EngineFailures {
		fmt.Fprintf(&b, "引擎失败[%s]: %d\n", engine, n)
	}
	return b.String()
}
