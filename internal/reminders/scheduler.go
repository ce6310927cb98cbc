package reminders

import (
	"fmt"
	"rucd/internal/models"
	"rucd/internal/providers"
	"rucd/internal/reminders/interfaces"
	"rucd/internal/services"
	"rucd/internal/structures"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler recomputes the full pending reminder set from fleet state. It
// never patches individual reminders: every run cancels each category by
// prefix and rebuilds it, so the pending set is a pure function of the fleet
// plus the fired-token history.
type Scheduler struct {
	config     *structures.Config
	logger     providers.Logger
	service    services.FleetServiceInterface
	notifier   NotifierInterface
	dedup      DedupStoreInterface
	badge      BadgeSinkInterface
	metrics    providers.MetricsProviderInterface
	auth       AuthorizerInterface
	authorized atomic.Bool
	wg         sync.WaitGroup
	now        func() time.Time
}

func NewScheduler(conf *structures.Config, logger providers.Logger, service services.FleetServiceInterface, notifier NotifierInterface, dedup DedupStoreInterface, badge BadgeSinkInterface, metrics providers.MetricsProviderInterface, auth AuthorizerInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   conf,
		logger:   logger,
		service:  service,
		notifier: notifier,
		dedup:    dedup,
		badge:    badge,
		metrics:  metrics,
		auth:     auth,
		now:      time.Now,
	}
}

// Init requests delivery authorization and runs the first full reschedule.
// Without a grant the scheduler still runs, but only cancels and maintains
// the badge; nothing is ever scheduled.
func (s *Scheduler) Init() {
	granted := s.auth.RequestAuthorization()
	s.authorized.Store(granted)
	if granted {
		s.logger.Infof(providers.TypeApp, "Reminder delivery authorized")
	} else {
		s.logger.Warnf(providers.TypeApp, "Reminder delivery not authorized, scheduling disabled")
	}
	s.RescheduleAll()
}

// Stop waits for in-flight reschedule runs spawned by NotifyChange.
func (s *Scheduler) Stop() {
	s.wg.Wait()
}

// NotifyChange triggers a reschedule off the mutating goroutine so fleet
// writes never wait on reminder recomputation.
func (s *Scheduler) NotifyChange() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RescheduleAll()
	}()
}

func (s *Scheduler) RescheduleAll() {
	now := s.now()
	vehicles := s.service.List()

	for _, category := range Categories {
		s.rescheduleCategory(category, vehicles, now)
	}

	count := AttentionCount(vehicles, now, s.config.Reminders.RucLeadDays, s.config.Reminders.DateLeadDays)
	s.badge.SetCount(count)
	if count == 0 {
		s.badge.ClearDelivered()
	}
}

// rescheduleCategory cancels the category wholesale, then re-derives a
// reminder per vehicle. Cancellation happens even without authorization so
// a revoked grant drains the pending set on the next run.
func (s *Scheduler) rescheduleCategory(category string, vehicles []*models.Vehicle, now time.Time) {
	cancelled := s.notifier.CancelPrefix(category + ":")
	if cancelled > 0 {
		s.metrics.IncRemindersCancelled(category, cancelled)
	}
	if !s.authorized.Load() {
		return
	}

	for _, v := range vehicles {
		trigger, token, payload, ok := s.planFor(category, v, now)
		if !ok {
			continue
		}

		id := ReminderID(category, v.ID)
		if !trigger.After(now) {
			if s.dedup.Fired(token) {
				s.metrics.IncRemindersSuppressed(category)
				continue
			}
			// Marked before the schedule call: a crash in between loses one
			// delivery rather than risking a repeat.
			s.dedup.MarkFired(token)
			if err := s.notifier.Schedule(id, payload, now); err != nil {
				s.logger.Errorf(providers.TypeApp, "Failed to schedule %s reminder for %s: %s", category, v.Plate, err)
				continue
			}
			s.metrics.IncRemindersScheduled(category)
			continue
		}

		if err := s.notifier.Schedule(id, payload, s.atFireHour(trigger)); err != nil {
			s.logger.Errorf(providers.TypeApp, "Failed to schedule %s reminder for %s: %s", category, v.Plate, err)
			continue
		}
		s.metrics.IncRemindersScheduled(category)
	}
}

// planFor derives the trigger day, cause token and payload for one vehicle in
// one category. ok=false means the category does not apply to this vehicle.
func (s *Scheduler) planFor(category string, v *models.Vehicle, now time.Time) (time.Time, string, Payload, bool) {
	switch category {
	case CategoryRUCExpiry:
		exhaustion, ok := v.ProjectedExhaustionDate(now)
		if !ok {
			return time.Time{}, "", Payload{}, false
		}
		trigger := exhaustion.AddDate(0, 0, -s.config.Reminders.RucLeadDays)
		return trigger, RUCExpiryToken(v.ID, v.DistanceExpiry), Payload{
			Title: "RUC running low",
			Body:  fmt.Sprintf("%s has %d km left, projected to run out around %s", v.Plate, v.DistanceRemaining(), exhaustion.Format("2 Jan 2006")),
			Token: RUCExpiryToken(v.ID, v.DistanceExpiry),
		}, true

	case CategoryWOFExpiry:
		if v.WOFExpiry == nil {
			return time.Time{}, "", Payload{}, false
		}
		trigger := v.WOFExpiry.AddDate(0, 0, -s.config.Reminders.DateLeadDays)
		token := DateExpiryToken(category, v.ID, v.WOFExpiry)
		return trigger, token, Payload{
			Title: "WOF due soon",
			Body:  fmt.Sprintf("%s WOF expires on %s", v.Plate, v.WOFExpiry.Format("2 Jan 2006")),
			Token: token,
		}, true

	case CategoryRegoExpiry:
		if v.RegistrationExpiry == nil {
			return time.Time{}, "", Payload{}, false
		}
		trigger := v.RegistrationExpiry.AddDate(0, 0, -s.config.Reminders.DateLeadDays)
		token := DateExpiryToken(category, v.ID, v.RegistrationExpiry)
		return trigger, token, Payload{
			Title: "Registration due soon",
			Body:  fmt.Sprintf("%s registration expires on %s", v.Plate, v.RegistrationExpiry.Format("2 Jan 2006")),
			Token: token,
		}, true

	case CategoryReadingStale:
		latest, ok := v.LatestEntry()
		if !ok {
			return time.Time{}, "", Payload{}, false
		}
		interval := s.config.Reminders.StaleLongDays
		if len(v.Entries) < s.config.Reminders.StaleShortThreshold {
			interval = s.config.Reminders.StaleShortDays
		}
		trigger := latest.Date.AddDate(0, 0, interval)
		token := ReadingStaleToken(v.ID, latest.ID.String(), interval)
		return trigger, token, Payload{
			Title: "Odometer update due",
			Body:  fmt.Sprintf("No reading for %s since %s, log one to keep projections fresh", v.Plate, latest.Date.Format("2 Jan 2006")),
			Token: token,
		}, true
	}
	return time.Time{}, "", Payload{}, false
}

// atFireHour places a future reminder at the configured local hour on the
// trigger day.
func (s *Scheduler) atFireHour(trigger time.Time) time.Time {
	y, m, d := trigger.Date()
	return time.Date(y, m, d, s.config.Reminders.FireHour, 0, 0, 0, trigger.Location())
}
