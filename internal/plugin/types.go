// Package plugin discovers and runs the out-of-process effectors that turn
// gated game commands into key presses and audio cues.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest is the plugin.json file that describes a plugin.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	// Platforms limits discovery to the listed GOOS values. Empty means any.
	Platforms []string `json:"platforms,omitempty"`
}

// Request is written to the plugin's stdin as a single JSON document.
type Request struct {
	Action string `json:"action"`
	// Command is the game command that triggered the request, if any.
	Command string          `json:"command,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin and where it lives on disk.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the plugin declares action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
