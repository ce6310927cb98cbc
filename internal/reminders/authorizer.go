package reminders

import "rucd/internal/structures"

type AuthorizerInterface interface {
	RequestAuthorization() bool
}

// ConfigAuthorizer grants reminder delivery from configuration. No reminder
// is scheduled until a grant, matching backends where the user must opt in.
type ConfigAuthorizer struct {
	config *structures.Config
}

func NewConfigAuthorizer(conf *structures.Config) AuthorizerInterface {
	return &ConfigAuthorizer{config: conf}
}

func (a *ConfigAuthorizer) RequestAuthorization() bool {
	return a.config.Reminders.Enabled
}
