package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/northmart/storefront/internal/order"
)

// Phase is the state of a dashboard view. Loading and Failed are
// mutually exclusive; a view is always in exactly one phase.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
)

// ActiveView is the live actionable-orders snapshot.
type ActiveView struct {
	Phase  Phase
	Orders []order.Order
	Err    error
}

// SummaryView is the recent-orders snapshot.
type SummaryView struct {
	Phase  Phase
	Orders []order.Summary
	Err    error
}

// ErrChangeInFlight rejects a second status-change command for an order
// whose previous command has not completed yet.
var ErrChangeInFlight = errors.New("a status change for this order is already in progress")

// API is the slice of the REST client the monitor drives.
type API interface {
	FetchActiveOrders(ctx context.Context) ([]order.Order, error)
	FetchStats(ctx context.Context) ([]order.Summary, error)
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) error
}

// Monitor maintains the two dashboard views by polling the admin API.
// Each fetch carries a sequence number taken when the fetch is issued;
// a response is applied only if no later-issued response has been
// applied already, so the poll/manual-refresh race resolves
// deterministically instead of by arrival order.
type Monitor struct {
	client   API
	creds    CredentialStore
	interval time.Duration
	grace    time.Duration

	mu             sync.Mutex
	active         ActiveView
	summary        SummaryView
	activeSeq      uint64
	activeApplied  uint64
	summarySeq     uint64
	summaryApplied uint64
	inFlight       map[int64]struct{}
	expired        sync.Once

	// OnUpdate is called after every applied snapshot or phase change.
	OnUpdate func()
	// OnSessionExpired is called once, a grace period after the summary
	// fetch observes an expired session, so the operator can read the
	// error first.
	OnSessionExpired func()
}

func NewMonitor(client API, creds CredentialStore, interval, grace time.Duration) *Monitor {
	return &Monitor{
		client:   client,
		creds:    creds,
		interval: interval,
		grace:    grace,
		inFlight: make(map[int64]struct{}),
	}
}

// Run fetches both views immediately and then re-fetches the active
// view on every tick until ctx is cancelled. Cancellation stops future
// polls; an in-flight fetch is not aborted, its late result is simply
// dropped by the sequence check if a newer one has landed.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("monitor: polling started")

	m.RefreshSummary(ctx)
	m.RefreshActive(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor: polling stopped")
			return
		case <-ticker.C:
			m.RefreshActive(ctx)
		}
	}
}

// RefreshActive re-fetches the live actionable-orders view.
func (m *Monitor) RefreshActive(ctx context.Context) {
	m.mu.Lock()
	m.activeSeq++
	seq := m.activeSeq
	m.active.Phase = PhaseLoading
	m.active.Err = nil
	m.mu.Unlock()
	m.notify()

	orders, err := m.client.FetchActiveOrders(ctx)

	m.mu.Lock()
	if seq <= m.activeApplied {
		// A later-issued fetch already resolved; this result is stale.
		m.mu.Unlock()
		return
	}
	m.activeApplied = seq
	if err != nil {
		log.Warn().Err(err).Msg("monitor: active orders fetch failed")
		m.active = ActiveView{Phase: PhaseFailed, Err: err}
	} else {
		m.active = ActiveView{Phase: PhaseLoaded, Orders: orders}
	}
	m.mu.Unlock()
	m.notify()
}

// RefreshSummary re-fetches the recent-orders view. Unlike the active
// view, an expired session here is fatal: the credential is cleared and
// a redirect is scheduled.
func (m *Monitor) RefreshSummary(ctx context.Context) {
	m.mu.Lock()
	m.summarySeq++
	seq := m.summarySeq
	m.summary.Phase = PhaseLoading
	m.summary.Err = nil
	m.mu.Unlock()
	m.notify()

	summaries, err := m.client.FetchStats(ctx)

	m.mu.Lock()
	if seq <= m.summaryApplied {
		m.mu.Unlock()
		return
	}
	m.summaryApplied = seq
	if err != nil {
		log.Warn().Err(err).Msg("monitor: summary fetch failed")
		m.summary = SummaryView{Phase: PhaseFailed, Err: err}
	} else {
		m.summary = SummaryView{Phase: PhaseLoaded, Orders: summaries}
	}
	m.mu.Unlock()

	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoCredentials) {
		m.sessionExpired()
	}
	m.notify()
}

// ChangeStatus issues a status-transition command. Overlapping commands
// for the same order are rejected. The displayed snapshot changes only
// after the follow-up re-fetch completes; no optimistic update is made.
func (m *Monitor) ChangeStatus(ctx context.Context, id int64, status order.Status) error {
	m.mu.Lock()
	if _, busy := m.inFlight[id]; busy {
		m.mu.Unlock()
		return ErrChangeInFlight
	}
	m.inFlight[id] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, id)
		m.mu.Unlock()
	}()

	if err := m.client.UpdateOrderStatus(ctx, id, status); err != nil {
		log.Warn().Err(err).Int64("order_id", id).Msg("monitor: status change failed")
		m.mu.Lock()
		m.active.Phase = PhaseFailed
		m.active.Err = err
		m.mu.Unlock()
		m.notify()
		return err
	}

	log.Info().Int64("order_id", id).Stringer("new_status", status).Msg("monitor: status change accepted")
	m.RefreshActive(ctx)
	return nil
}

// Active returns the current live-orders snapshot.
func (m *Monitor) Active() ActiveView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Summary returns the current recent-orders snapshot.
func (m *Monitor) Summary() SummaryView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

func (m *Monitor) notify() {
	if m.OnUpdate != nil {
		m.OnUpdate()
	}
}

func (m *Monitor) sessionExpired() {
	m.expired.Do(func() {
		if err := m.creds.Clear(); err != nil {
			log.Error().Err(err).Msg("monitor: failed to clear credentials")
		}
		if m.OnSessionExpired != nil {
			time.AfterFunc(m.grace, m.OnSessionExpired)
		}
	})
}
