package reminders

import (
	"fmt"
	"rucd/internal/providers"
	"rucd/internal/structures"
	"sort"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// maxPendingReminders caps the pending set, mirroring the small fixed quota
// local notification backends impose.
const maxPendingReminders = 64

type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Token string `json:"token"`
}

type PendingReminder struct {
	ID      string    `json:"id"`
	Payload Payload   `json:"payload"`
	FireAt  time.Time `json:"fireAt"`
}

type NotifierInterface interface {
	Init()
	Stop()
	Schedule(id string, payload Payload, fireAt time.Time) error
	CancelPrefix(prefix string) int
	Pending() []PendingReminder
}

// LocalNotifier keeps the pending reminder set in memory and delivers due
// reminders on a periodic sweep. Delivery here means logging the payload and
// recording the cause token as fired; the pending set holds at most one
// reminder per id, so rescheduling an id replaces it.
type LocalNotifier struct {
	mu      sync.Mutex
	pending map[string]PendingReminder
	cron    *gron.Cron
	config  *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	dedup   DedupStoreInterface
	now     func() time.Time
}

func NewLocalNotifier(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, dedup DedupStoreInterface) NotifierInterface {
	return &LocalNotifier{
		pending: make(map[string]PendingReminder),
		config:  conf,
		logger:  logger,
		metrics: metrics,
		dedup:   dedup,
		now:     time.Now,
	}
}

func (n *LocalNotifier) Init() {
	n.cron = gron.New()
	n.cron.AddFunc(gron.Every(n.config.Reminders.SweepInterval), func() {
		n.deliverDue()
	})
	n.cron.Start()
	n.logger.Infof(providers.TypeApp, "Reminder delivery sweep started, interval %s", n.config.Reminders.SweepInterval)
}

func (n *LocalNotifier) Stop() {
	if n.cron != nil {
		n.cron.Stop()
	}
}

// Schedule places a reminder in the pending set. A reminder that is already
// due is delivered on the spot rather than parked until the next sweep, so a
// cancel between the schedule call and the sweep can never swallow it.
func (n *LocalNotifier) Schedule(id string, payload Payload, fireAt time.Time) error {
	n.mu.Lock()

	if !fireAt.After(n.now()) {
		delete(n.pending, id)
		n.mu.Unlock()
		n.deliver(PendingReminder{ID: id, Payload: payload, FireAt: fireAt})
		return nil
	}

	defer n.mu.Unlock()
	if _, exists := n.pending[id]; !exists && len(n.pending) >= maxPendingReminders {
		return fmt.Errorf("pending reminder quota of %d reached", maxPendingReminders)
	}
	n.pending[id] = PendingReminder{ID: id, Payload: payload, FireAt: fireAt}
	return nil
}

func (n *LocalNotifier) CancelPrefix(prefix string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	cancelled := 0
	for id := range n.pending {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			delete(n.pending, id)
			cancelled++
		}
	}
	return cancelled
}

// Pending returns the pending set sorted by fire time, ties by id.
func (n *LocalNotifier) Pending() []PendingReminder {
	n.mu.Lock()
	out := make([]PendingReminder, 0, len(n.pending))
	for _, r := range n.pending {
		out = append(out, r)
	}
	n.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// deliverDue removes and delivers every reminder whose fire time has passed.
// The token is marked fired on delivery as well as on scheduling, so either
// path alone is enough to suppress a repeat.
func (n *LocalNotifier) deliverDue() {
	now := n.now()

	n.mu.Lock()
	due := make([]PendingReminder, 0)
	for id, r := range n.pending {
		if !r.FireAt.After(now) {
			due = append(due, r)
			delete(n.pending, id)
		}
	}
	n.mu.Unlock()

	for _, r := range due {
		n.deliver(r)
	}
}

func (n *LocalNotifier) deliver(r PendingReminder) {
	n.dedup.MarkFired(r.Payload.Token)
	n.metrics.IncRemindersFired(CategoryOf(r.ID))
	n.logger.Infof(providers.TypeApp, "Reminder fired: %s | %s | %s", r.ID, r.Payload.Title, r.Payload.Body)
}
