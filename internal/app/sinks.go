package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/effector"
	"github.com/ayusman/airrunner/internal/gesture"
	"github.com/ayusman/airrunner/internal/plugin"
)

// CueSink plays named audio cues.
type CueSink interface {
	Play(cue string) error
}

// Audio cue names understood by the sound plugin.
const (
	CueStart     = "start"
	CueAlert     = "alert"
	CueCountdown = "countdown"
	CueSuccess   = "success"
	CueNotify    = "notify"
)

// cueFor returns the cue played when a fires.
func cueFor(a gesture.Action) string {
	return strings.ToLower(a.String())
}

// dispatchers owns the effect queues the app created itself.
type dispatchers []*effector.Dispatcher

func (d dispatchers) close(ctx context.Context) {
	for _, disp := range d {
		if err := disp.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("effect queue did not drain")
		}
	}
}

// pluginDispatcher queues effects for the named plugin, or only logs them
// when the plugin is not installed.
func pluginDispatcher(
	mgr *plugin.Manager,
	exec *plugin.Executor,
	name string,
	target func(*plugin.Manager, *plugin.Executor) *effector.PluginTarget,
	queue int,
) *effector.Dispatcher {
	var t effector.Target = effector.LogTarget{Name: name}
	timeout := plugin.DefaultTimeout
	if mgr != nil && exec != nil {
		if _, err := mgr.Get(name); err == nil {
			t = target(mgr, exec)
			timeout = exec.Timeout()
		} else {
			log.Warn().Str("plugin", name).Msg("plugin not installed, effects will only be logged")
		}
	}
	return effector.NewDispatcher(name, t, queue, timeout+time.Second)
}
