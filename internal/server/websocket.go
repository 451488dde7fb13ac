package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

// Time allowed to push one message to a peer
const writeWait = 10 * time.Second

func (s *DevServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already validated above
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Debug(r.Context(), "client connected", "total", count)

	// Read loop exists only to observe the close
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	s.clientsMu.Lock()
	delete(s.clients, conn)
	count = len(s.clients)
	s.clientsMu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
	s.logger.Debug(ctx, "client disconnected", "total", count)
}

// checkOrigin validates the request origin. Connections without an origin
// header or from hosts other than the server's own are rejected.
func (s *DevServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowedOrigins := []string{
		s.Addr(),
		fmt.Sprintf("localhost:%d", s.cfg.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.cfg.Server.Port),
	}
	for _, allowed := range allowedOrigins {
		if originURL.Host == allowed {
			return true
		}
	}
	return false
}

// Broadcast pushes one text message to every connected client. Clients
// that fail the write are dropped.
func (s *DevServer) Broadcast(ctx context.Context, message string) {
	s.clientsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.clientsMu.RUnlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageText, []byte(message))
		cancel()
		if err != nil {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			s.clientsMu.Unlock()
			conn.Close(websocket.StatusAbnormalClosure, "write failed")
		}
	}
}

// indexShell is the fallback page served when the project has no
// public/index.html of its own.
const indexShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>minipack dev server</title>
</head>
<body>
<div id="app"></div>
<script src="/bundle.js"></script>
%s
</body>
</html>
`

// reloadClient is the script injected into served pages. It reloads the
// page when the server announces a new bundle.
const reloadClient = `<script>
(function () {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function (e) {
    if (e.data === "reload") {
      location.reload();
    } else {
      console.error("[minipack] " + e.data);
    }
  };
  ws.onclose = function () {
    setTimeout(function () { location.reload(); }, 1000);
  };
})();
</script>`

// injectReloadClient splices the reload script into an HTML document,
// before </body> when present, appended otherwise.
func injectReloadClient(body []byte) []byte {
	marker := []byte("</body>")
	if idx := bytes.LastIndex(body, marker); idx >= 0 {
		out := make([]byte, 0, len(body)+len(reloadClient)+1)
		out = append(out, body[:idx]...)
		out = append(out, []byte(reloadClient)...)
		out = append(out, '\n')
		out = append(out, body[idx:]...)
		return out
	}
	return append(append([]byte{}, body...), []byte(reloadClient)...)
}
