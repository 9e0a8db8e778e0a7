// Package remote delivers input sent over a websocket to an in-memory
// surface.
//
// Clients send trace records, one JSON object per text message, using the
// same format as trace files. A poll record is answered with the state
// snapshot from the configured poll function. Invalid messages are
// answered with an error object and do not close the connection.
//
// Routes:
//
//	GET /healthz  liveness and the bound selector
//	GET /state    the current snapshot
//	GET /ws       the input websocket
package remote

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/dshills/webshim/internal/host/memhost"
	"github.com/dshills/webshim/internal/input/mouse"
	"github.com/dshills/webshim/internal/input/native"
	"github.com/dshills/webshim/internal/input/trace"
	"github.com/dshills/webshim/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxMessageSize bounds a single websocket message.
const MaxMessageSize = 64 << 10

// PollFunc returns the current input state as snapshot JSON.
type PollFunc func() (string, error)

// ErrNoPoll is reported when a poll arrives and no PollFunc is set.
var ErrNoPoll = errors.New("polling is not available")

// Server accepts remote input for one surface.
type Server struct {
	doc      *memhost.Document
	el       *memhost.Element
	surface  memhost.Surface
	selector string

	engine   *gin.Engine
	upgrader websocket.Upgrader
	poll     PollFunc

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	log *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPoll sets the function answering poll records and GET /state.
func WithPoll(fn PollFunc) Option {
	return func(s *Server) { s.poll = fn }
}

// WithSurface wraps the element's write side.
func WithSurface(wrap func(memhost.Surface) memhost.Surface) Option {
	return func(s *Server) { s.surface = wrap(s.surface) }
}

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSize sets the initial element size.
func WithSize(w, h float64) Option {
	return func(s *Server) {
		s.el.SetRect(mouse.Rect{Width: w, Height: h})
	}
}

// New creates a server. The element is registered under selector.
func New(selector string, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	doc, el := memhost.NewSurface(selector, 0, 0)
	s := &Server{
		doc:      doc,
		el:       el,
		surface:  el,
		selector: selector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		log:   logging.Default().Child("remote"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.logRequests)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/state", s.handleState)
	s.engine.GET("/ws", s.handleWS)
	return s
}

// Document returns the document holding the remote element.
func (s *Server) Document() native.Document { return s.doc }

// Element returns the remote element.
func (s *Server) Element() *memhost.Element { return s.el }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeConns()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// Connections returns the number of open websocket connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debugf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"selector": s.selector,
	})
}

func (s *Server) handleState(c *gin.Context) {
	if s.poll == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrNoPoll.Error()})
		return
	}
	snap, err := s.poll()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(snap))
}

func (s *Server) handleWS(c *gin.Context) {
	if !c.IsWebsocket() {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(MaxMessageSize)

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.log.Infof("client connected from %s", c.ClientIP())

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
		s.log.Infof("client disconnected from %s", c.ClientIP())
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debugf("websocket read: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			s.reply(conn, errorReply{Type: "error", Message: "expected a text message"})
			continue
		}
		s.handleMessage(conn, data)
	}
}

type errorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type stateReply struct {
	Type  string              `json:"type"`
	State jsoniter.RawMessage `json:"state"`
}

func (s *Server) handleMessage(conn *websocket.Conn, data []byte) {
	if !gjson.ValidBytes(data) {
		s.reply(conn, errorReply{Type: "error", Message: trace.ErrBadRecord.Error() + ": not JSON"})
		return
	}

	typ, err := trace.ApplyRecord(s.surface, gjson.ParseBytes(data))
	if err != nil {
		s.reply(conn, errorReply{Type: "error", Message: err.Error()})
		return
	}
	if typ != trace.TypePoll {
		return
	}

	if s.poll == nil {
		s.reply(conn, errorReply{Type: "error", Message: ErrNoPoll.Error()})
		return
	}
	snap, err := s.poll()
	if err != nil {
		s.reply(conn, errorReply{Type: "error", Message: err.Error()})
		return
	}
	s.reply(conn, stateReply{Type: "state", State: jsoniter.RawMessage(snap)})
}

func (s *Server) reply(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("encoding reply: %v", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Debugf("websocket write: %v", err)
	}
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
