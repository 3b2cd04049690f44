package arbiter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/viant/arbiter/internal/idgen"
	"github.com/viant/arbiter/internal/logging"
	"github.com/viant/arbiter/model/state"
	"github.com/viant/arbiter/progress"
	core "github.com/viant/arbiter/service/arbiter"
	"github.com/viant/arbiter/service/event"
	"github.com/viant/arbiter/service/messaging"
	"github.com/viant/arbiter/service/messaging/memory"
	"github.com/viant/arbiter/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Service wraps the core arbiter with logging, tracing, progress tracking and
// a transition event stream
type Service struct {
	id        string
	config    *Config
	arbiter   *core.Arbiter
	tracker   *progress.Progress
	events    *event.Service
	publisher *event.Publisher[state.Transition]
	listeners []core.Listener
	exporter  sdktrace.SpanExporter
	logger    logging.Logger
}

// ID returns the arbiter identifier
func (s *Service) ID() string {
	return s.id
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Size returns the number of agents
func (s *Service) Size() int {
	return s.arbiter.Size()
}

// Arbiter returns the core arbiter
func (s *Service) Arbiter() *core.Arbiter {
	return s.arbiter
}

// Snapshot returns the current state of every agent
func (s *Service) Snapshot() []state.State {
	return s.arbiter.Snapshot()
}

// Progress returns the progress tracker
func (s *Service) Progress() *progress.Progress {
	return s.tracker
}

// Events returns the event service or nil when events are disabled.
// Transitions are published as event.Event[state.Transition].
func (s *Service) Events() *event.Service {
	return s.events
}

// Request blocks until agent i holds both of its resources
func (s *Service) Request(ctx context.Context, i int) error {
	ctx, span := tracing.StartSpan(ctx, "arbiter.request", "INTERNAL")
	span.WithAgent(i).WithAttributes(map[string]string{"arbiter.id": s.id})
	ctx = tracing.WithSpan(ctx, span)
	err := s.arbiter.Request(ctx, i)
	if err != nil {
		s.logFailure("request", i, err)
	} else {
		span.AddEvent("granted", nil)
	}
	tracing.EndSpan(span, err)
	return err
}

// Release returns the resources held by agent i
func (s *Service) Release(ctx context.Context, i int) error {
	_, span := tracing.StartSpan(ctx, "arbiter.release", "INTERNAL")
	span.WithAgent(i).WithAttributes(map[string]string{"arbiter.id": s.id})
	err := s.arbiter.Release(i)
	if err != nil {
		s.logFailure("release", i, err)
	}
	tracing.EndSpan(span, err)
	return err
}

// Close stops event listeners
func (s *Service) Close() {
	if s.events != nil {
		s.events.Close()
	}
}

func (s *Service) logFailure(operation string, i int, err error) {
	log := s.logger.WithField("agent", i).WithError(err)
	switch {
	case errors.Is(err, core.ErrWaitBoundExceeded):
		log.Warnf("%v expired", operation)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Debugf("%v withdrawn", operation)
	default:
		log.Errorf("%v failed", operation)
	}
}

func (s *Service) onTransition(transition state.Transition) {
	s.tracker.Observe(transition)
	s.logger.WithFields(map[string]interface{}{
		"agent":  transition.Agent,
		"seq":    transition.Seq,
		"from":   transition.From,
		"to":     transition.To,
		"hunger": transition.Hunger,
	}).Debug("transition")
	if s.publisher != nil {
		evt := event.NewEvent(&event.Context{
			ArbiterID: s.id,
			Agent:     transition.Agent,
			EventType: string(transition.To),
		}, transition)
		if err := s.publisher.Publish(context.Background(), evt); err != nil {
			s.logger.WithError(err).WithField("seq", transition.Seq).Debug("transition event dropped")
		}
	}
	for _, listener := range s.listeners {
		listener(transition)
	}
}

func (s *Service) init() error {
	if s.id == "" {
		s.id = idgen.New()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.config.Log.Level != "" {
		_ = logging.Set(logging.Level(s.config.Log.Level))
	}
	if s.config.Log.JSON {
		_ = logging.Set(logging.JSON())
	}
	if s.logger == nil {
		s.logger = logging.New("arbiter").WithField("arbiter", s.id)
	}
	if err := s.initTracing(); err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	s.tracker = progress.New(s.id, s.config.Agents)
	if err := s.initEvents(); err != nil {
		return fmt.Errorf("failed to init events: %w", err)
	}
	var err error
	s.arbiter, err = core.New(s.config.Agents,
		core.WithPolicy(s.config.policy()),
		core.WithListener(s.onTransition))
	return err
}

func (s *Service) initTracing() error {
	cfg := s.config.Tracing
	switch {
	case s.exporter != nil:
		return tracing.InitWithExporter(cfg.Service, cfg.Version, s.exporter)
	case cfg.Enabled:
		return tracing.Init(cfg.Service, cfg.Version, cfg.Output)
	}
	return nil
}

func (s *Service) initEvents() error {
	if !s.config.Events.Enabled {
		return nil
	}
	buffer := s.config.Events.QueueBuffer
	var err error
	s.events, err = event.New(messaging.VendorMemory, event.WithNewMemoryQueueConfig(func(name string) memory.Config {
		cfg := memory.DefaultConfig()
		cfg.QueueBuffer = buffer
		// agents never block on slow consumers
		cfg.DropWhenFull = true
		return cfg
	}))
	if err != nil {
		return err
	}
	s.publisher, err = event.PublisherOf[state.Transition](s.events)
	return err
}

// New creates a Service. The default configuration is DefaultConfig.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewFromConfig creates a Service from config; options are applied on top
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	return New(append([]Option{WithConfig(config)}, options...)...)
}
