package handler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"zhibo/internal/config"
	"zhibo/internal/model"
	"zhibo/internal/streaming"
	"zhibo/pkg/log"
)

// fakeConn 按序返回预置消息，消息读完后阻塞直到连接关闭
type fakeConn struct {
	mu     sync.Mutex
	reads  [][]byte
	writes [][]byte
	closed bool
	done   chan struct{}
}

func newFakeConn(reads ...[]byte) *fakeConn {
	return &fakeConn{reads: reads, done: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	if len(f.reads) > 0 {
		msg := f.reads[0]
		f.reads = f.reads[1:]
		f.mu.Unlock()
		return websocket.TextMessage, msg, nil
	}
	f.mu.Unlock()

	<-f.done
	return 0, nil, ErrConnectionClosed
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrConnectionClosed
	}
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

func (f *fakeConn) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.EngineOrder = []string{"edge"}
	cfg.Character.DefaultPersonality = "cute_girl"
	cfg.Character.DefaultAsmrMode = "gentle_whisper"
	cfg.Audio.SampleRate = 22050
	cfg.CMDExit = []string{"退出"}
	return cfg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// waitWrites 等待指定数量的响应到达
func waitWrites(t *testing.T, conn *fakeConn, n int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if writes := conn.written(); len(writes) >= n {
			return writes
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d responses, got %d", n, len(conn.written()))
	return nil
}

func runHandler(t *testing.T, reads ...any) *fakeConn {
	t.Helper()

	conn := newFakeConn()
	for _, r := range reads {
		conn.reads = append(conn.reads, mustMarshal(t, r))
	}

	logger := log.NewLogger(&log.Option{Mode: "test", ServiceName: "handler-test"})
	h, err := NewHandler(testConfig(), logger, conn, streaming.NewCollector())
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		h.Handle(context.Background())
		close(done)
	}()
	t.Cleanup(func() {
		h.close()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("handler did not stop")
		}
	})
	return conn
}

func TestHandler_HelloNegotiation(t *testing.T) {
	hello := model.ClientTextMessage{Type: "hello", Personality: "energetic_girl"}
	conn := runHandler(t, hello)

	writes := waitWrites(t, conn, 1)
	var resp model.HelloResponse
	if err := json.Unmarshal(writes[0], &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "hello" || resp.SessionID == "" {
		t.Errorf("unexpected hello response: %+v", resp)
	}
	if resp.Personality != "energetic_girl" {
		t.Errorf("personality = %q, want energetic_girl", resp.Personality)
	}
	if resp.TtsParams.Speed <= 0 || resp.TtsParams.Pitch <= 0 {
		t.Errorf("tts params not negotiated: %+v", resp.TtsParams)
	}
}

func TestHandler_HelloUnknownPersonalityFallsBack(t *testing.T) {
	hello := model.ClientTextMessage{Type: "hello", Personality: "no_such_one"}
	conn := runHandler(t, hello)

	writes := waitWrites(t, conn, 1)
	var resp model.HelloResponse
	if err := json.Unmarshal(writes[0], &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Personality != "cute_girl" {
		t.Errorf("personality = %q, want fallback cute_girl", resp.Personality)
	}
}

func TestHandler_CommandSwitchAndStats(t *testing.T) {
	hello := model.ClientTextMessage{Type: "hello"}
	cmdAsmr := model.ClientTextMessage{Type: "command", Command: "asmr", CommandArg: "roleplay"}
	cmdStats := model.ClientTextMessage{Type: "command", Command: "stats"}
	conn := runHandler(t, hello, cmdAsmr, cmdStats)

	writes := waitWrites(t, conn, 3)

	var cmdResp model.CommandResponse
	if err := json.Unmarshal(writes[1], &cmdResp); err != nil {
		t.Fatal(err)
	}
	if cmdResp.Type != "command" || cmdResp.Command != "asmr" {
		t.Errorf("unexpected command response: %+v", cmdResp)
	}

	var statsResp model.StatsResponse
	if err := json.Unmarshal(writes[2], &statsResp); err != nil {
		t.Fatal(err)
	}
	if statsResp.Type != "stats" {
		t.Errorf("type = %q, want stats", statsResp.Type)
	}
	if statsResp.Stats.AsmrMode != "roleplay" {
		t.Errorf("asmr mode in stats = %q, want roleplay", statsResp.Stats.AsmrMode)
	}
}

func TestHandler_ChatProducesReply(t *testing.T) {
	hello := model.ClientTextMessage{Type: "hello"}
	chat := model.ClientTextMessage{Type: "chat", ChatText: "你好呀", UserName: "小明"}
	conn := runHandler(t, hello, chat)

	writes := waitWrites(t, conn, 2)
	var resp model.ChatResponse
	if err := json.Unmarshal(writes[1], &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "chat" || resp.Text == "" {
		t.Errorf("unexpected chat response: %+v", resp)
	}
}

func TestHandler_InvalidJSONSendsError(t *testing.T) {
	conn := newFakeConn([]byte(`{"type":"hello"}`), []byte("not-json"))
	logger := log.NewLogger(&log.Option{Mode: "test", ServiceName: "handler-test"})
	h, err := NewHandler(testConfig(), logger, conn, streaming.NewCollector())
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	done := make(chan struct{})
	go func() {
		h.Handle(context.Background())
		close(done)
	}()
	defer func() {
		h.close()
		<-done
	}()

	writes := waitWrites(t, conn, 2)
	var resp model.BaseResponse
	if err := json.Unmarshal(writes[1], &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "error" || resp.ErrorCode == 0 {
		t.Errorf("unexpected error response: %+v", resp)
	}
}
