package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/engine"
	"github.com/remotune/remotune/internal/resolver"
	"github.com/remotune/remotune/internal/store"
)

//go:embed web
var webFS embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Remotes connect from arbitrary LAN origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Options configures a Server.
type Options struct {
	Engine   *engine.Engine
	Resolver resolver.Resolver
	Store    store.Store
	Port     int
	Log      *logrus.Entry
}

// Server exposes the player over websocket and serves the status page.
type Server struct {
	engine *engine.Engine
	res    resolver.Resolver
	store  store.Store
	port   int
	log    *logrus.Entry

	registry *registry

	mu       sync.Mutex
	running  bool
	httpSrv  *http.Server
	listener net.Listener
	sub      *engine.Subscription
	cancel   context.CancelFunc
	ctx      context.Context
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		engine:   opts.Engine,
		res:      opts.Resolver,
		store:    opts.Store,
		port:     opts.Port,
		log:      log,
		registry: newRegistry(),
	}
}

// Start binds the listener and begins accepting connections. Calling Start
// on a running server is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/", s.handleIndex)

	s.listener = ln
	s.httpSrv = &http.Server{Handler: mux}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.sub = s.engine.Subscribe()
	s.running = true

	go s.broadcastLoop(s.sub)
	// Capture the server locally: Stop may nil out s.httpSrv before this
	// goroutine is scheduled.
	srv := s.httpSrv
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("http server stopped")
		}
	}()

	s.log.WithField("port", s.Port()).Info("server started")
	return nil
}

// Stop closes the listener and every client connection. In-flight commands
// are not waited for. Calling Stop on a stopped server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	s.cancel()
	s.engine.Unsubscribe(s.sub)
	s.sub = nil

	for _, c := range s.registry.all() {
		s.registry.remove(c.device.ID)
		c.close()
	}

	err := s.httpSrv.Close()
	s.httpSrv = nil
	s.listener = nil
	s.log.Info("server stopped")
	return err
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Port returns the bound port, which may differ from the configured one
// when the server was started on port 0.
func (s *Server) Port() int {
	if s.listener == nil {
		return s.port
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return s.port
}

// Devices lists connected devices, oldest first.
func (s *Server) Devices() []Device {
	return s.registry.devices()
}

// DisconnectDevice sends a disconnect notice to the device and drops the
// connection. It reports whether the device was registered; a dead socket
// is still removed and reported as disconnected.
func (s *Server) DisconnectDevice(id string) bool {
	c, ok := s.registry.remove(id)
	if !ok {
		return false
	}
	if frame, err := encodeMessage(evtDisconnect, nil); err == nil {
		c.enqueue(frame)
	}
	c.close()
	s.log.WithField("device", id).Info("device disconnected by host")
	return true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := fs.ReadFile(webFS, "web/index.html")
	if err != nil {
		http.Error(w, "status page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
	if splitErr != nil {
		ip = r.RemoteAddr
	}
	device := newDevice(ip, r.UserAgent(), r.URL.Query().Get("device"))
	c := newClient(conn, device, s.log)

	// The snapshot goes into the queue before the client is visible to the
	// broadcast loop, so it is always the first frame delivered.
	if frame, err := encodeMessage(evtStateChanged, s.engine.Snapshot()); err == nil {
		c.enqueue(frame)
	}
	s.registry.add(c)
	s.log.WithField("device", device.String()).Info("device connected")

	go c.writePump()
	s.readLoop(c)
}

// readLoop handles inbound frames for one connection. Commands from a single
// connection are dispatched sequentially in arrival order.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.registry.remove(c.device.ID)
		c.close()
		s.log.WithField("device", c.device.ID).Info("device gone")
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.registry.touch(c.device.ID)
		s.dispatch(c, raw)
	}
}

func (s *Server) broadcastLoop(sub *engine.Subscription) {
	for {
		select {
		case <-sub.Done:
			return
		case ev := <-sub.Events:
			s.broadcast(ev)
		}
	}
}

// broadcast fans one engine event out to every client. A single goroutine
// feeds every per-client queue, so event order is preserved per connection.
func (s *Server) broadcast(ev engine.Event) {
	var (
		frame []byte
		err   error
	)
	switch e := ev.(type) {
	case engine.StateChanged:
		frame, err = encodeMessage(evtStateChanged, e.State)
	case engine.TrackChanged:
		frame, err = encodeMessage(evtTrackChanged, e.Track)
	case engine.TimeUpdate:
		frame, err = encodeMessage(evtTimeUpdate, timePayload{
			CurrentTime: e.CurrentTime,
			Duration:    e.Duration,
		})
	default:
		return
	}
	if err != nil {
		s.log.WithError(err).Error("encode event")
		return
	}
	for _, c := range s.registry.all() {
		c.enqueue(frame)
	}
}

func (s *Server) sendError(c *client, msg string) {
	if frame, err := encodeMessage(evtError, errorPayload{Message: msg}); err == nil {
		c.enqueue(frame)
	}
}

func (s *Server) sendTo(c *client, msgType string, payload any) {
	frame, err := encodeMessage(msgType, payload)
	if err != nil {
		s.log.WithError(err).WithField("type", msgType).Error("encode message")
		return
	}
	c.enqueue(frame)
}
