package rpcserver

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds a single frame write; proof/witness payloads are
// large but the network itself should never stall this long.
const wsWriteTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla/websocket connection to the io.ReadWriteCloser
// shape gethrpc.NewCodec expects, framing each JSON-RPC message as one
// websocket text message in each direction.
type wsConn struct {
	conn *websocket.Conn
	r    []byte
}

func (c *wsConn) Read(p []byte) (int, error) {
	for len(c.r) == 0 {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.r = msg
	}
	n := copy(p, c.r)
	c.r = c.r[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// WebsocketHandler upgrades HTTP connections to websocket and serves the
// same RPC methods registered via RegisterName, for clients that prefer a
// persistent connection over one-shot HTTP POSTs.
func (s *Server) WebsocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
			return
		}
		codec := gethrpc.NewCodec(&wsConn{conn: conn})
		s.rpc.ServeCodec(codec, 0)
	})
}
