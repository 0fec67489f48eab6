package app

import (
	"time"

	"github.com/armature-dev/armature/framework/component"
	"github.com/armature-dev/armature/framework/config"
)

// Settings is the demo's configuration source. During the scan its values
// are registered as providers, so any later component can depend on them
// by token.
type Settings struct{}

func NewSettings() *Settings { return &Settings{} }

func (s *Settings) ConfigValues() map[component.Token]any {
	return map[component.Token]any{
		TokenSalutation: config.Get("GREETING_SALUTATION", "Hello"),
		TokenMOTD:       config.Get("APP_MOTD", "greetings are served"),
	}
}

// Clock hands out timestamps. Kept as a component so tests could swap a
// fake in by re-registering the token.
type Clock struct{}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Now() time.Time { return time.Now() }
