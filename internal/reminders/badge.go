package reminders

import (
	"rucd/internal/models"
	"rucd/internal/providers"
	"time"
)

// AttentionCount is the number of vehicles needing attention: an exhausted
// RUC block, a projection inside the lead window, or a WOF/registration
// expiry inside the date lead window. A vehicle matching several conditions
// still counts once.
func AttentionCount(vehicles []*models.Vehicle, now time.Time, projectionLeadDays, dateLeadDays int) int {
	count := 0
	for _, v := range vehicles {
		if needsAttention(v, now, projectionLeadDays, dateLeadDays) {
			count++
		}
	}
	return count
}

func needsAttention(v *models.Vehicle, now time.Time, projectionLeadDays, dateLeadDays int) bool {
	if v.DistanceRemaining() == 0 {
		return true
	}
	if days, ok := v.ProjectedDaysRemaining(now); ok && days <= float64(projectionLeadDays) {
		return true
	}
	if days, ok := v.WOFDaysRemaining(now); ok && days <= dateLeadDays {
		return true
	}
	if days, ok := v.RegistrationDaysRemaining(now); ok && days <= dateLeadDays {
		return true
	}
	return false
}

type BadgeSinkInterface interface {
	SetCount(count int)
	ClearDelivered()
}

// LogBadgeSink publishes the attention count to the metrics gauge and the
// application log. ClearDelivered stands in for dismissing already-shown
// notifications once nothing needs attention.
type LogBadgeSink struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewLogBadgeSink(logger providers.Logger, metrics providers.MetricsProviderInterface) BadgeSinkInterface {
	return &LogBadgeSink{logger: logger, metrics: metrics}
}

func (b *LogBadgeSink) SetCount(count int) {
	b.metrics.SetAttentionCount(count)
	b.logger.Debugf(providers.TypeApp, "Attention count set to %d", count)
}

func (b *LogBadgeSink) ClearDelivered() {
	b.logger.Debugf(providers.TypeApp, "Cleared delivered reminders")
}
