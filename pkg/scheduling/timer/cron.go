package timer

import (
	"github.com/robfig/cron/v3"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
)

// cronParser accepts standard five-field expressions, an optional leading
// seconds field, and descriptors such as "@hourly" or "@every 5m".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// AddCronTimer registers a repeating timer that fires at the times a cron
// expression describes instead of at a fixed interval.
func (m *Manager) AddCronTimer(expr string, cb func()) (*Timer, error) {
	if cb == nil {
		return nil, rterrors.NewValidationError("timer", "callback", nil, "cannot be nil")
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, rterrors.NewValidationError("timer", "cron", expr, err.Error()).
			WithHint("use five fields, six with seconds, or a descriptor like @every 1m")
	}
	t := &Timer{manager: m, repeating: true, cb: cb, schedule: schedule}
	if err := m.add(t); err != nil {
		return nil, err
	}
	return t, nil
}
