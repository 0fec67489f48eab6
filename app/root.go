package app

import (
	"log/slog"
)

// DemoApp is the application root: the last component the scanner brings
// up, once every service it needs is alive.
type DemoApp struct {
	motd    string
	log     *slog.Logger
	greeter *Greeter
	visits  *VisitLog
}

func NewDemoApp(motd string, log *slog.Logger, greeter *Greeter, visits *VisitLog) *DemoApp {
	return &DemoApp{motd: motd, log: log, greeter: greeter, visits: visits}
}

func (d *DemoApp) OnInit() error {
	d.log.Info("demo application ready", "motd", d.motd)
	return nil
}

func (d *DemoApp) OnDestroy() error {
	d.log.Info("demo application stopped", "visits", d.visits.Count())
	return nil
}

// MOTD returns the configured message of the day.
func (d *DemoApp) MOTD() string { return d.motd }
