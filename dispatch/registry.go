package dispatch

import (
	"iter"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
)

// Extra holds the arguments stored with a connection and prepended to every
// send that reaches it.
type Extra struct {
	Args  []any
	Named map[string]any
}

func (e Extra) clone() Extra {
	return Extra{Args: slices.Clone(e.Args), Named: maps.Clone(e.Named)}
}

// Connection is one registered receiver under a (sender, signal) pair.
type Connection struct {
	Receiver *Receiver
	Weak     bool
	Extra    Extra
}

// slot is the ordered receiver list of one (sender, signal) pair. refs and
// extras are index aligned.
type slot struct {
	refs   []ref
	extras []Extra
}

func (s *slot) index(id any) int {
	return slices.IndexFunc(s.refs, func(h ref) bool { return h.id == id })
}

func (s *slot) insert(i int, h ref, extra Extra) {
	s.refs = slices.Insert(s.refs, i, h)
	s.extras = slices.Insert(s.extras, i, extra)
}

func (s *slot) remove(i int) {
	s.refs = slices.Delete(s.refs, i, i+1)
	s.extras = slices.Delete(s.extras, i, i+1)
}

// backRef lists the senders under which a receiver has connections.
type backRef struct {
	senders []any
	cleanup runtime.Cleanup
	watched bool
}

// Registry maps (sender, signal) pairs to ordered lists of receivers.
//
// A Registry is safe for concurrent use. Receivers are invoked without the
// registry lock held, so they may connect, disconnect and send re-entrantly.
type Registry struct {
	mu     sync.Mutex
	logger *slog.Logger

	// gen is bumped by Reset so that cleanups installed before it no-op.
	gen uint64

	connections map[any]map[Signal]*slot
	senders     map[any]runtime.Cleanup
	backRefs    map[any]*backRef
	plugins     []Plugin

	connects    int
	disconnects int
	sends       int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for debug records. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithPlugins installs plugins on the new registry.
func WithPlugins(plugins ...Plugin) Option {
	return func(r *Registry) { r.plugins = append(r.plugins, plugins...) }
}

// New returns an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:      slog.Default(),
		connections: make(map[any]map[Signal]*slot),
		senders:     make(map[any]runtime.Cleanup),
		backRefs:    make(map[any]*backRef),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ConnectOption configures a single connection.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	weak  bool
	args  []any
	named map[string]any
}

// Strong makes the connection keep the receiver alive.
func Strong() ConnectOption {
	return func(c *connectConfig) { c.weak = false }
}

// WithArgs stores positional arguments that are prepended to every send
// reaching this connection.
func WithArgs(args ...any) ConnectOption {
	return func(c *connectConfig) { c.args = append(c.args, args...) }
}

// WithNamed stores named arguments that every send reaching this connection
// starts from. Named arguments of the send override them.
func WithNamed(named map[string]any) ConnectOption {
	return func(c *connectConfig) {
		if c.named == nil {
			c.named = make(map[string]any, len(named))
		}
		maps.Copy(c.named, named)
	}
}

// Connect registers recv for signal from sender. Use All for every signal
// and Any for every sender; a nil sender means Anonymous.
//
// The connection is weak unless Strong is given. Connecting a receiver that
// is already registered for the same sender and signal replaces the
// existing connection in place, keeping its position in dispatch order.
// Connecting a method receiver whose object, or a WeakRef sender whose
// referent, has been collected fails with ErrCollected.
func (r *Registry) Connect(recv *Receiver, signal Signal, sender any, opts ...ConnectOption) error {
	if recv == nil {
		return &ConfigError{Op: "connect", Signal: signal, Sender: sender, Err: ErrNilReceiver}
	}
	if err := checkSignal(signal); err != nil {
		return &ConfigError{Op: "connect", Signal: signal, Sender: sender, Err: err}
	}
	sender = normalizeSender(sender)
	if err := checkSender(sender); err != nil {
		return &ConfigError{Op: "connect", Signal: signal, Sender: sender, Err: err}
	}

	cfg := connectConfig{weak: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	extra := Extra{Args: slices.Clip(cfg.args), Named: cfg.named}
	h := newRef(recv, cfg.weak)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.watchReceiver(recv, cfg.weak); err != nil {
		return &ConfigError{Op: "connect", Signal: signal, Sender: sender, Err: err}
	}
	if err := r.trackSender(sender); err != nil {
		r.dropIdleBackRef(recv.id)
		return &ConfigError{Op: "connect", Signal: signal, Sender: sender, Err: err}
	}

	signals, ok := r.connections[sender]
	if !ok {
		signals = make(map[Signal]*slot)
		r.connections[sender] = signals
	}

	s, ok := signals[signal]
	if !ok {
		s = &slot{}
		signals[signal] = s
	}

	if i := s.index(recv.id); i >= 0 {
		s.refs[i], s.extras[i] = h, extra
		r.logger.Debug("Replaced receiver connection.", "receiver", recv.name, "signal", signal, "sender", sender, "position", i)
	} else {
		s.insert(len(s.refs), h, extra)
		r.logger.Debug("Connected receiver.", "receiver", recv.name, "signal", signal, "sender", sender, "weak", cfg.weak)
	}
	r.rememberSender(recv.id, sender)
	r.connects++
	return nil
}

// Disconnect removes recv from signal and sender. It returns a *LookupError
// if no such connection exists. How the receiver was held does not matter.
func (r *Registry) Disconnect(recv *Receiver, signal Signal, sender any) error {
	if recv == nil {
		return &ConfigError{Op: "disconnect", Signal: signal, Sender: sender, Err: ErrNilReceiver}
	}
	if err := checkSignal(signal); err != nil {
		return &ConfigError{Op: "disconnect", Signal: signal, Sender: sender, Err: err}
	}
	sender = normalizeSender(sender)
	if err := checkSender(sender); err != nil {
		return &ConfigError{Op: "disconnect", Signal: signal, Sender: sender, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notConnected := &LookupError{Signal: signal, Sender: sender, Receiver: recv.name, Err: ErrNotConnected}
	s := r.slot(sender, signal)
	if s == nil {
		return notConnected
	}
	i := s.index(recv.id)
	if i < 0 {
		return notConnected
	}
	s.remove(i)
	if !r.connectedUnder(recv.id, sender) {
		r.forgetSender(recv.id, sender)
	}
	r.prune(sender, signal)
	r.disconnects++
	r.logger.Debug("Disconnected receiver.", "receiver", recv.name, "signal", signal, "sender", sender)
	return nil
}

// Receivers returns the live connections registered exactly for sender and
// signal, in dispatch order. Each Extra is a copy. It never returns an error.
func (r *Registry) Receivers(sender any, signal Signal) []Connection {
	if checkSignal(signal) != nil {
		return nil
	}
	sender = normalizeSender(sender)
	if checkSender(sender) != nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slot(sender, signal)
	if s == nil {
		return nil
	}
	conns := make([]Connection, 0, len(s.refs))
	for i, h := range s.refs {
		if recv := h.get(); recv != nil {
			conns = append(conns, Connection{Receiver: recv, Weak: h.isWeak(), Extra: s.extras[i].clone()})
		}
	}
	return conns
}

// AllReceivers yields every live receiver that a Send of signal from sender
// would reach, in dispatch order and without duplicates. The sequence is a
// snapshot taken when iteration starts.
func (r *Registry) AllReceivers(sender any, signal Signal) iter.Seq2[*Receiver, Extra] {
	return func(yield func(*Receiver, Extra) bool) {
		if checkSignal(signal) != nil {
			return
		}
		sender := normalizeSender(sender)
		if checkSender(sender) != nil {
			return
		}
		r.mu.Lock()
		targets := r.targets(sender, signal, false)
		r.mu.Unlock()

		for _, t := range targets {
			recv := t.ref.get()
			if recv == nil {
				continue
			}
			if !yield(recv, t.extra.clone()) {
				return
			}
		}
	}
}

// Reset removes every connection and plugin and cancels every pending
// liveness callback.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.senders {
		c.Stop()
	}
	for _, b := range r.backRefs {
		b.cleanup.Stop()
	}
	r.gen++
	r.connections = make(map[any]map[Signal]*slot)
	r.senders = make(map[any]runtime.Cleanup)
	r.backRefs = make(map[any]*backRef)
	r.plugins = nil
	r.connects, r.disconnects, r.sends = 0, 0, 0
	r.logger.Debug("Registry reset.")
}

// target is a snapshot of one connection taken for a dispatch.
type target struct {
	ref   ref
	extra Extra
}

// targets collects the connections matching sender and signal. Callers must
// hold r.mu.
func (r *Registry) targets(sender any, signal Signal, exact bool) []target {
	keys := [][2]any{{sender, signal}}
	if !exact {
		keys = append(keys, [2]any{sender, All}, [2]any{Any, signal}, [2]any{Any, All})
	}

	var out []target
	seen := make(map[any]struct{})
	for _, k := range keys {
		s := r.slot(k[0], k[1])
		if s == nil {
			continue
		}
		for i, h := range s.refs {
			if _, dup := seen[h.id]; dup {
				continue
			}
			seen[h.id] = struct{}{}
			out = append(out, target{ref: h, extra: s.extras[i]})
		}
	}
	return out
}

func (r *Registry) slot(sender any, signal Signal) *slot {
	signals, ok := r.connections[sender]
	if !ok {
		return nil
	}
	return signals[signal]
}

// connectedUnder reports whether id has a connection for any signal of
// sender.
func (r *Registry) connectedUnder(id any, sender any) bool {
	for _, s := range r.connections[sender] {
		if s.index(id) >= 0 {
			return true
		}
	}
	return false
}

// prune drops the (sender, signal) entry if it is empty, and the sender if
// it has no signals left.
func (r *Registry) prune(sender any, signal Signal) {
	signals, ok := r.connections[sender]
	if !ok {
		return
	}
	if s, ok := signals[signal]; ok && len(s.refs) == 0 {
		delete(signals, signal)
		r.logger.Debug("Pruned empty signal.", "signal", signal, "sender", sender)
	}
	if len(signals) == 0 {
		r.removeSender(sender)
	}
}
