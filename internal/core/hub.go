package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/identity"
	"github.com/vovakirdan/roomrelay/internal/store"
)

type inbound struct {
	client *Client
	frame  []byte
}

// Hub is the single event loop owning the registry and every client's room association.
type Hub struct {
	registry   *Registry
	dispatcher *Dispatcher

	register    chan *Client
	unregister  chan *Client
	inbound     chan inbound
	completions chan func()
	done        chan struct{}
	inflight    sync.WaitGroup

	runCtx       context.Context
	storeTimeout time.Duration
	log          *zerolog.Logger
}

// NewHub creates a hub dispatching against st. A zero storeTimeout leaves store calls unbounded.
func NewHub(st store.Store, ids identity.Generator, storeTimeout time.Duration, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		registry:     NewRegistry(logger),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan inbound),
		completions:  make(chan func()),
		done:         make(chan struct{}),
		storeTimeout: storeTimeout,
		log:          logger,
	}
	h.dispatcher = NewDispatcher(st, h.registry, ids, h, logger)
	return h
}

// Run processes registrations, inbound frames and store completions until ctx is done.
// It returns once every in-flight store call has returned.
func (h *Hub) Run(ctx context.Context) {
	h.runCtx = ctx
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, c := range h.registry.Clients() {
				h.registry.Forget(c)
			}
			h.inflight.Wait()
			h.log.Info().Msg("hub stopped")
			return

		case c := <-h.register:
			h.registry.Register(c)
			h.log.Info().Str("client_id", c.ID).Int("clients", h.registry.Len()).Msg("client connected")

		case c := <-h.unregister:
			if h.registry.Forget(c) {
				h.log.Info().Str("client_id", c.ID).Int("clients", h.registry.Len()).Msg("client disconnected")
			}

		case in := <-h.inbound:
			h.dispatcher.Dispatch(in.client, in.frame)

		case then := <-h.completions:
			then()
		}
	}
}

// Done is closed once Run has returned and no store call is still running.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient adds c to the registry.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient forgets c; its Send channel is closed by the hub.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Submit queues an inbound frame from c for dispatch.
func (h *Hub) Submit(ctx context.Context, c *Client, frame []byte) error {
	select {
	case h.inbound <- inbound{client: c, frame: frame}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

// Await implements Scheduler. It must only be called from the loop.
func (h *Hub) Await(call func(ctx context.Context) error, then func(err error)) {
	ctx := h.runCtx
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if h.storeTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, h.storeTimeout)
		}
		err := call(callCtx)
		cancel()

		select {
		case h.completions <- func() { then(err) }:
		case <-ctx.Done():
		}
	}()
}
