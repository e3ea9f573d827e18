package daemon

import "time"

func (d *Daemon) SetInterval(interval time.Duration) {
	d.interval = interval
}
