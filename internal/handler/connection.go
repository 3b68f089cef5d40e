package handler

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("websocket connection is closed")
)

// 流量形态不对称：上行只有短JSON文本，下行会带base64编码的整段音频
const (
	readBufferSize  = 1024
	writeBufferSize = 32 * 1024
	maxInboundBytes = 64 * 1024

	// 直播弹幕有自然的静默间隔，读超时放宽一些
	readTimeout = 2 * time.Minute
	// 一条tts响应可能有几百KB，写超时按此量级给
	writeTimeout      = time.Minute
	closeFrameTimeout = 5 * time.Second
)

type Connection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	IsClosed() bool
}

type websocketConn struct {
	conn     *websocket.Conn
	lock     sync.Mutex
	isClosed int32 // 连接状态标记: 0:open, 1:closed; 使用原子操作降低开销
}

func newWebsocketConn(w http.ResponseWriter, r *http.Request) (*websocketConn, error) {
	upGrader := websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := upGrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	// 客户端只应发送控制消息，超长帧直接断开
	conn.SetReadLimit(maxInboundBytes)
	return &websocketConn{conn: conn, isClosed: 0}, nil
}

func (w *websocketConn) ReadMessage() (messageType int, p []byte, err error) {
	if atomic.LoadInt32(&w.isClosed) == 1 {
		return 0, nil, ErrConnectionClosed
	}

	_ = w.conn.SetReadDeadline(time.Now().Add(readTimeout))

	messageType, p, err = w.conn.ReadMessage()
	if err != nil {
		// 读取出错时连接已关闭，因此将isClosed设置为已关闭
		atomic.StoreInt32(&w.isClosed, 1)
		return 0, nil, ErrConnectionClosed
	}

	return messageType, p, err
}

func (w *websocketConn) WriteMessage(messageType int, data []byte) error {
	if atomic.LoadInt32(&w.isClosed) == 1 {
		return ErrConnectionClosed
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	// 再次检查连接是否关闭，避免在获取锁的过程中连接被关闭
	if atomic.LoadInt32(&w.isClosed) == 1 {
		return ErrConnectionClosed
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	err := w.conn.WriteMessage(messageType, data)
	if err != nil {
		atomic.StoreInt32(&w.isClosed, 1)
		return ErrConnectionClosed
	}

	return nil
}

func (w *websocketConn) Close() error {
	// 原子操作避免重复关闭
	if !atomic.CompareAndSwapInt32(&w.isClosed, 0, 1) {
		return nil
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	// 发送关闭帧
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "connection closed")
	_ = w.conn.SetWriteDeadline(time.Now().Add(closeFrameTimeout))
	_ = w.conn.WriteMessage(websocket.CloseMessage, closeMsg)

	return w.conn.Close()
}

func (w *websocketConn) IsClosed() bool {
	return atomic.LoadInt32(&w.isClosed) == 1
}
