package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/events"
	"github.com/minimapd/minimapd/internal/monitoring"
	"github.com/minimapd/minimapd/internal/registry"
	"github.com/minimapd/minimapd/internal/service"
)

// flushInterval bounds how stale a streamed patch can be. Animation ticks
// mutate the document between client messages, so the session flushes on a
// timer as well as after each message.
const flushInterval = 50 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is a client-to-server frame.
type Message struct {
	Type  string           `json:"type"`
	Event *events.Event    `json:"event,omitempty"`
	Box   *service.BoxSpec `json:"box,omitempty"`
	Op    string           `json:"op,omitempty"`
	Field string           `json:"field,omitempty"`
	Value interface{}      `json:"value,omitempty"`
}

// Handler manages WebSocket connections.
type Handler struct {
	svc     *service.Service
	metrics *monitoring.Metrics
	log     *zap.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(svc *service.Service, metrics *monitoring.Metrics, log *zap.Logger) *Handler {
	return &Handler{svc: svc, metrics: metrics, log: log}
}

// session serializes writes: the read loop and the background flusher both
// send frames.
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
	inst *registry.Instance
	h    *Handler
}

// HandleConnection upgrades the request and binds the session to the
// instance named by the "instance" query parameter.
func (h *Handler) HandleConnection(c *gin.Context) {
	inst, err := h.svc.Registry().Get(c.Query("instance"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	s := &session{conn: conn, inst: inst, h: h}
	s.send(map[string]interface{}{
		"type":        "system",
		"message":     "Connected to minimapd",
		"instance_id": inst.ID,
	})

	done := make(chan struct{})
	defer close(done)
	go s.flushLoop(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.sendError("malformed message")
			continue
		}
		h.metrics.WSMessages.WithLabelValues("in", msg.Type).Inc()

		switch msg.Type {
		case "event":
			s.handleEvent(msg)
		case "measure":
			s.handleMeasure(msg)
		case "op":
			if err := h.svc.Op(inst, msg.Op); err != nil {
				s.sendError(err.Error())
				continue
			}
		case "set":
			if err := h.svc.Set(inst, msg.Field, msg.Value); err != nil {
				s.sendError(err.Error())
				continue
			}
		case "ping":
			s.send(map[string]interface{}{"type": "pong"})
			continue
		default:
			s.sendError("unknown message type")
			continue
		}
		s.flush()
	}
}

func (s *session) handleEvent(msg Message) {
	if msg.Event == nil {
		s.sendError("event message without event payload")
		return
	}
	s.h.svc.Dispatch(s.inst, msg.Event)
}

func (s *session) handleMeasure(msg Message) {
	if msg.Box == nil {
		s.sendError("measure message without box payload")
		return
	}
	if err := s.h.svc.Measure(s.inst, *msg.Box); err != nil {
		s.sendError(err.Error())
	}
}

// flushLoop streams patches produced outside the request path, such as
// smooth-scroll animation ticks.
func (s *session) flushLoop(done <-chan struct{}) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case sc := <-s.inst.Notices:
			s.send(map[string]interface{}{
				"type":      "preview_change",
				"scale":     sc,
				"timestamp": time.Now().Unix(),
			})
		case <-ticker.C:
			s.flush()
		}
	}
}

// flush drains pending DOM patches, if any, into a single frame.
func (s *session) flush() {
	s.drainNotices()
	patches := s.inst.Document.Journal().Drain()
	if len(patches) == 0 {
		return
	}
	s.send(map[string]interface{}{
		"type":      "patches",
		"patches":   patches,
		"timestamp": time.Now().Unix(),
	})
}

// drainNotices forwards queued preview-change notifications before their
// patches, so the client sees the scale that produced them.
func (s *session) drainNotices() {
	for {
		select {
		case sc := <-s.inst.Notices:
			s.send(map[string]interface{}{
				"type":      "preview_change",
				"scale":     sc,
				"timestamp": time.Now().Unix(),
			})
		default:
			return
		}
	}
}

func (s *session) send(data interface{}) error {
	payload, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	if m, ok := data.(map[string]interface{}); ok {
		if t, ok := m["type"].(string); ok {
			s.h.metrics.WSMessages.WithLabelValues("out", t).Inc()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *session) sendError(msg string) error {
	return s.send(map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
