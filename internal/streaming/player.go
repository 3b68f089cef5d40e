package streaming

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"zhibo/pkg/log"
)

// streamQueue 串行播放队列，队列为空时输出静音而不是停止
type streamQueue struct {
	mu      sync.Mutex
	current beep.Streamer
	queue   []beep.Streamer
}

func (q *streamQueue) push(s beep.Streamer) {
	q.mu.Lock()
	q.queue = append(q.queue, s)
	q.mu.Unlock()
}

func (q *streamQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.queue)
	if q.current != nil {
		n++
	}
	return n
}

func (q *streamQueue) clear() {
	q.mu.Lock()
	q.current = nil
	q.queue = nil
	q.mu.Unlock()
}

func (q *streamQueue) Stream(samples [][2]float64) (n int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.current == nil {
			if len(q.queue) == 0 {
				return 0, true // 暂时无数据，不停止播放
			}
			q.current = q.queue[0]
			q.queue = q.queue[1:]
		}

		n, ok = q.current.Stream(samples)
		if !ok {
			q.current = nil
			continue
		}
		return n, ok
	}
}

func (q *streamQueue) Err() error { return nil }

// Player 把合成出的mp3音频解码后送进扬声器
// 音频设备初始化失败时进入静默模式，Play调用直接丢弃音频
type Player struct {
	queue      *streamQueue
	sampleRate beep.SampleRate
	enabled    bool
	log        *log.Logger
}

func NewPlayer(sampleRate int, logger *log.Logger) *Player {
	sr := beep.SampleRate(sampleRate)
	p := &Player{
		queue:      &streamQueue{},
		sampleRate: sr,
		log:        logger,
	}

	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		logger.Warnf("音频设备初始化失败，进入静默模式: %v", err)
		return p
	}
	p.enabled = true
	speaker.Play(p.queue)
	return p
}

func (p *Player) Enabled() bool {
	return p.enabled
}

// Play 解码mp3并加入播放队列，不等待播放完成
func (p *Player) Play(audio []byte) error {
	if len(audio) == 0 {
		return nil
	}
	if !p.enabled {
		p.log.Debugf("静默模式，丢弃 %d 字节音频", len(audio))
		return nil
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
	if err != nil {
		return fmt.Errorf("mp3解码失败: %w", err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		s = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}
	p.queue.push(s)
	return nil
}

// QueueSize 等待播放的音频段数量，含正在播放的一段
func (p *Player) QueueSize() int {
	return p.queue.size()
}

// Stop 清空播放队列
func (p *Player) Stop() {
	if !p.enabled {
		return
	}
	speaker.Lock()
	p.queue.clear()
	speaker.Unlock()
}
