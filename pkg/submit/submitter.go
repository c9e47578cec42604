package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/ports"
)

// ErrInFlight is reported when single-flight is on and a submission is running.
var ErrInFlight = errors.New("a submission is already in flight")

// GraphReader is the read side of the graph store.
type GraphReader interface {
	Nodes() []domain.NodeRecord
	Edges() []domain.EdgeRecord
}

var _ GraphReader = (ports.GraphStore)(nil)

// Submitter snapshots the graph, sends it and builds the dialog.
type Submitter struct {
	graph  GraphReader
	client *Client
	reg    *nodetype.Registry
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	single bool

	mu       sync.Mutex
	inFlight int
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithRegistry enables constraint warnings for registered node types.
func WithRegistry(reg *nodetype.Registry) Option {
	return func(s *Submitter) {
		s.reg = reg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Submitter) {
		s.logger = l
	}
}

// WithHooks sets the lifecycle hooks fired after each submission.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Submitter) {
		s.hooks = h
	}
}

// WithSingleFlight rejects a submission while another one is running.
// Without it, overlapping submissions all go through.
func WithSingleFlight() Option {
	return func(s *Submitter) {
		s.single = true
	}
}

// NewSubmitter creates a submitter reading from graph and sending through client.
func NewSubmitter(graph GraphReader, client *Client, opts ...Option) *Submitter {
	s := &Submitter{
		graph:  graph,
		client: client,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the current graph. Failures come back as the error variant;
// the graph is only ever read. A request id already attached to ctx is
// forwarded as is; otherwise a new one is generated.
func (s *Submitter) Submit(ctx context.Context) Dialog {
	nodes, edges := s.graph.Nodes(), s.graph.Edges()
	requestID, ok := RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	ev := &domain.SubmitEvent{
		EventBase: domain.NewEventBase(domain.EventSubmit),
		RequestID: requestID,
		NumNodes:  len(nodes),
		NumEdges:  len(edges),
	}
	log := s.logger.With("request_id", ev.RequestID)

	if !s.acquire(log) {
		ev.Outcome, ev.Err = domain.OutcomeRejected, ErrInFlight
		s.fire(ctx, ev)
		return ErrorDialog(ErrInFlight, s.client.BaseURL())
	}
	defer s.release()

	start := time.Now()
	res, err := s.client.Parse(WithRequestID(ctx, ev.RequestID), BuildPipeline(nodes, edges))
	ev.Duration = time.Since(start)

	var d Dialog
	if err != nil {
		log.Error("Pipeline submission failed", "err", err, "duration", ev.Duration)
		ev.Outcome, ev.Err = domain.OutcomeError, err
		d = ErrorDialog(err, s.client.BaseURL())
	} else {
		log.Info("Pipeline analyzed", "num_nodes", res.NumNodes, "num_edges", res.NumEdges, "is_dag", res.IsDAG)
		ev.Outcome = domain.OutcomeSuccess
		d = SuccessDialog(*res, s.warnings(nodes))
	}
	s.fire(ctx, ev)
	return d
}

func (s *Submitter) acquire(log *slog.Logger) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		if s.single {
			log.Warn("Rejecting overlapping submission", "in_flight", s.inFlight)
			return false
		}
		log.Warn("Overlapping submission", "in_flight", s.inFlight)
	}
	s.inFlight++
	return true
}

func (s *Submitter) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
}

// InFlight returns the number of running submissions.
func (s *Submitter) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Submitter) fire(ctx context.Context, ev *domain.SubmitEvent) {
	if s.hooks.OnSubmit != nil {
		s.hooks.OnSubmit(ctx, ev)
	}
}

// warnings checks every present field value against its declared constraints.
func (s *Submitter) warnings(nodes []domain.NodeRecord) []string {
	if s.reg == nil {
		return nil
	}
	var out []string
	for _, n := range nodes {
		if n.Data == nil || s.reg.IsTemplate(n.Type) {
			continue
		}
		cfg, ok := s.reg.Lookup(n.Type, n.ID)
		if !ok {
			continue
		}
		values := n.Data.Map()
		for _, f := range cfg.Fields {
			v, ok := values[f.Name]
			if !ok {
				continue
			}
			if err := nodetype.CheckValue(f, v); err != nil {
				out = append(out, fmt.Sprintf("%s: %v", n.ID, err))
			}
		}
	}
	return out
}
