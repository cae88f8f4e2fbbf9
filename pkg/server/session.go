package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/component"
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/events"
	"github.com/loom-ui/loom/pkg/reconcile"
	"github.com/loom-ui/loom/pkg/schedule"
	"github.com/loom-ui/loom/pkg/styles"
)

// AppContext is everything an application needs to wire itself into a
// fresh document: define components, render the initial tree, and
// customize event harvesting.
type AppContext struct {
	Doc      *dom.Document
	Registry *component.Registry
	Root     *reconcile.Root
	Events   *events.Registry
}

// App wires an application into a fresh document. It runs once per
// session and once per server-side page render.
type App func(ctx *AppContext) error

// newAppContext builds an isolated document with its own registry,
// render root, and manually pumped frame source.
func newAppContext(frames *schedule.ManualFrames, log *slog.Logger, resolver *styles.Resolver) *AppContext {
	doc := dom.NewDocument()
	registry := component.NewRegistry(doc, frames,
		component.WithLogger(log),
		component.WithResolver(resolver),
	)
	return &AppContext{
		Doc:      doc,
		Registry: registry,
		Root:     reconcile.NewRoot(doc, nil, resolver),
		Events:   events.NewRegistry(),
	}
}

// pump steps frames until the schedule settles, including dirtiness
// produced by deferred lifecycle tasks.
func (a *AppContext) pump(frames *schedule.ManualFrames) {
	for {
		stepped := false
		for frames.Step() {
			stepped = true
		}
		if frames.RunTasks() == 0 && !stepped {
			return
		}
	}
}

// inbound is a client-to-server frame.
type inbound struct {
	Type  string          `json:"type"`
	Node  uint64          `json:"node,omitempty"`
	Event events.RawEvent `json:"event,omitempty"`
}

// outbound is a server-to-client frame.
type outbound struct {
	Type      string         `json:"type"`
	Seq       uint64         `json:"seq,omitempty"`
	Mutations []dom.Mutation `json:"muts,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Session owns one WebSocket client: an isolated document whose
// mutation log is streamed as JSON patch frames, and an event loop
// that dispatches decoded client events onto the tree.
type Session struct {
	*AppContext

	id      uuid.UUID
	conn    *websocket.Conn
	frames  *schedule.ManualFrames
	log     *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
	timeout time.Duration

	mu     sync.Mutex
	buf    []dom.Mutation
	seq    uint64
	closed bool
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	id := uuid.New()
	frames := schedule.NewManualFrames()
	log := srv.log.With("session", id.String())

	s := &Session{
		AppContext: newAppContext(frames, log, srv.resolver),
		id:         id,
		conn:       conn,
		frames:     frames,
		log:        log,
		metrics:    srv.metrics,
		tracer:     srv.tracer,
		timeout:    srv.cfg.ReadTimeout,
	}
	s.Doc.OnMutation(s.capture)
	return s
}

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) capture(m dom.Mutation) {
	s.mu.Lock()
	s.buf = append(s.buf, m)
	s.mu.Unlock()
}

// run wires the app, streams the initial mutations, and services the
// read loop until the connection drops.
func (s *Session) run(ctx context.Context, app App) {
	if app != nil {
		if err := app(s.AppContext); err != nil {
			s.log.Error("app setup failed", "error", err)
			s.sendError("setup failed")
			return
		}
	}
	s.drain(ctx)
	if err := s.flush(); err != nil {
		return
	}
	s.readLoop(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return
		}
		var in inbound
		if err := s.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.metrics.wsErrors.WithLabelValues("read").Inc()
				s.log.Warn("read failed", "error", err)
			}
			return
		}
		s.handleFrame(ctx, in)
	}
}

func (s *Session) handleFrame(ctx context.Context, in inbound) {
	switch in.Type {
	case "event":
		s.handleEvent(ctx, in)
	case "ping":
		s.send(outbound{Type: "pong"})
	default:
		s.log.Warn("unknown frame", "type", in.Type)
	}
}

// handleEvent decodes, harvests, and dispatches a client event, then
// drains the frames it dirtied and streams the resulting mutations.
func (s *Session) handleEvent(ctx context.Context, in inbound) {
	ctx, span := s.tracer.Start(ctx, "session.event",
		trace.WithAttributes(
			attribute.String("event.type", in.Event.Type),
			attribute.Int64("event.node", int64(in.Node)),
		))
	defer span.End()

	s.metrics.eventsTotal.WithLabelValues(in.Event.Type).Inc()

	node := findNode(s.Doc.Root(), in.Node)
	if node == nil {
		s.log.Warn("event for unknown node", "node", in.Node, "type", in.Event.Type)
		return
	}

	detail := s.Events.Harvest(in.Event)
	node.Dispatch(&dom.Event{Type: in.Event.Type, Detail: detail, Bubbles: true})

	s.drain(ctx)
	if err := s.flush(); err != nil {
		s.metrics.wsErrors.WithLabelValues("write").Inc()
		s.log.Warn("flush failed", "error", err)
	}
}

func (s *Session) drain(ctx context.Context) {
	_, span := s.tracer.Start(ctx, "session.frame")
	defer span.End()

	start := time.Now()
	s.AppContext.pump(s.frames)
	s.metrics.frameDuration.Observe(time.Since(start).Seconds())
}

// flush sends the buffered mutations as one patch frame.
func (s *Session) flush() error {
	s.mu.Lock()
	muts := s.buf
	s.buf = nil
	if len(muts) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.metrics.mutationsSent.Add(float64(len(muts)))
	return s.send(outbound{Type: "patch", Seq: seq, Mutations: muts})
}

func (s *Session) send(out outbound) error {
	return s.conn.WriteJSON(out)
}

func (s *Session) sendError(msg string) {
	_ = s.send(outbound{Type: "error", Message: msg})
}

// findNode locates a node by id, descending shadow subtrees.
func findNode(n *dom.Node, id uint64) *dom.Node {
	if n == nil {
		return nil
	}
	if n.ID() == id {
		return n
	}
	if sh := n.Shadow(); sh != nil {
		if found := findNode(sh, id); found != nil {
			return found
		}
	}
	for _, c := range n.Children() {
		if found := findNode(c, id); found != nil {
			return found
		}
	}
	return nil
}
