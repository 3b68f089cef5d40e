package streaming_test

import (
	"strings"
	"testing"

	"zhibo/internal/streaming"
)

func TestCollector_Snapshot(t *testing.T) {
	t.Parallel()

	c := streaming.NewCollector()
	for i := 0; i < 3; i++ {
		c.IncMessages()
	}

	s := c.Snapshot(nil, nil)
	if s.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", s.TotalMessages)
	}
	if s.Uptime < 0 {
		t.Errorf("Uptime = %v, want >= 0", s.Uptime)
	}
}

func TestStats_Format(t *testing.T) {
	t.Parallel()

	s := streaming.Stats{
		TotalMessages:  5,
		SynthCount:     4,
		QueueSize:      1,
		LastLatencyMS:  120,
		Personality:    "cute_girl",
		AsmrMode:       "gentle_whisper",
		EngineFailures: map[string]int{"doubao": 2},
	}

	out := s.Format()
	for _, want := range []string{"消息总数: 5", "合成次数: 4", "cute_girl", "gentle_whisper", "引擎失败[doubao]: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}
