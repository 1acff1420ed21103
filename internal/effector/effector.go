// Package effector delivers gated commands to the outside world without
// blocking the frame loop.
package effector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/plugin"
)

// Target performs a single effect, such as pressing a key or playing a cue.
type Target interface {
	Do(ctx context.Context, arg string) error
}

// TargetFunc adapts a function to Target.
type TargetFunc func(ctx context.Context, arg string) error

// Do calls f.
func (f TargetFunc) Do(ctx context.Context, arg string) error {
	return f(ctx, arg)
}

// PluginTarget runs one action of a named plugin, passing arg under param.
type PluginTarget struct {
	manager *plugin.Manager
	exec    *plugin.Executor
	name    string
	action  string
	param   string
}

// NewPluginTarget returns a Target backed by plugin name. The plugin is
// looked up on every call so a rescan takes effect immediately.
func NewPluginTarget(manager *plugin.Manager, exec *plugin.Executor, name, action, param string) *PluginTarget {
	return &PluginTarget{
		manager: manager,
		exec:    exec,
		name:    name,
		action:  action,
		param:   param,
	}
}

// Keyboard presses keys through the keyboard plugin.
func Keyboard(manager *plugin.Manager, exec *plugin.Executor) *PluginTarget {
	return NewPluginTarget(manager, exec, "keyboard", "press", "key")
}

// Sound plays cues through the sound plugin.
func Sound(manager *plugin.Manager, exec *plugin.Executor) *PluginTarget {
	return NewPluginTarget(manager, exec, "sound", "play", "cue")
}

// Do runs the plugin and turns an unsuccessful response into an error.
func (t *PluginTarget) Do(ctx context.Context, arg string) error {
	p, err := t.manager.Get(t.name)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	params, err := json.Marshal(map[string]string{t.param: arg})
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	resp, err := t.exec.Execute(ctx, p, &plugin.Request{Action: t.action, Params: params})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s %s %q: %s", t.name, t.action, arg, resp.Error)
	}
	return nil
}

// LogTarget only logs. It stands in when no plugin is available.
type LogTarget struct {
	Name string
}

// Do logs arg.
func (t LogTarget) Do(_ context.Context, arg string) error {
	log.Info().Str("target", t.Name).Str("arg", arg).Msg("effect")
	return nil
}
