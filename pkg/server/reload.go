package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/ssr/pkg/render"
)

// ReloadPath is the WebSocket endpoint of the dev reload hub.
const ReloadPath = "/_ssr/reload"

// ReloadMessageType names a message sent to dev browsers.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeError ReloadMessageType = "error"
)

// ReloadMessage is sent to browsers over the reload socket.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
}

const reloadWriteTimeout = 5 * time.Second

type reloadClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *reloadClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReloadHub tracks dev browsers connected to the reload socket.
type ReloadHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*reloadClient]struct{}
}

// NewReloadHub creates an empty hub.
func NewReloadHub(logger *slog.Logger) *ReloadHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadHub{
		logger:  logger,
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev only
			},
		},
	}
}

// ServeHTTP upgrades the connection and holds it until the browser leaves.
func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("reload upgrade failed", "error", err)
		return
	}
	c := &reloadClient{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
}

func (h *ReloadHub) remove(c *reloadClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// NotifyReload asks every browser to reload the page.
func (h *ReloadHub) NotifyReload() {
	h.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyError shows a reload failure in every browser.
func (h *ReloadHub) NotifyError(err error) {
	h.broadcast(ReloadMessage{Type: ReloadTypeError, Error: err.Error()})
}

func (h *ReloadHub) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*reloadClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.remove(c)
		}
	}
}

// ClientCount returns the number of connected browsers.
func (h *ReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every browser.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

// ReloadScript is the dev client injected into rendered pages.
func ReloadScript() render.ScriptTag {
	return render.ScriptTag{Inline: reloadClientJS}
}

const reloadClientJS = `(function(){
var delay=1000;
function connect(){
var proto=location.protocol==='https:'?'wss:':'ws:';
var ws=new WebSocket(proto+'//'+location.host+'` + ReloadPath + `');
ws.onopen=function(){delay=1000;};
ws.onmessage=function(e){
var msg;try{msg=JSON.parse(e.data);}catch(err){return;}
if(msg.type==='reload'){location.reload();}
else if(msg.type==='error'){console.error('[ssr] reload failed:',msg.error);}
};
ws.onclose=function(){setTimeout(function(){delay=Math.min(delay*2,30000);connect();},delay);};
ws.onerror=function(){ws.close();};
}
connect();
})();`
