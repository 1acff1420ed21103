// Package main is the sound plugin. It plays short audio cues on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Request is read from stdin.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PlayParams selects the cue to play.
type PlayParams struct {
	Cue string `json:"cue"`
}

const systemSounds = "/System/Library/Sounds"

// cues maps cue names to built-in system sounds. A file named
// sounds/<cue>.wav next to the executable overrides the default.
var cues = map[string]string{
	"notify":    "Glass",
	"countdown": "Tink",
	"alert":     "Basso",
	"success":   "Hero",
	"start":     "Submarine",
	"jump":      "Pop",
	"duck":      "Bottle",
	"left":      "Morse",
	"right":     "Purr",
	"pause":     "Funk",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "play" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	var p PlayParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to parse params: %v", err)})
		return
	}

	dir, _ := os.Getwd()
	path, err := cuePath(p.Cue, dir)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}
	if err := exec.Command("afplay", path).Run(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("play %s failed: %v", p.Cue, err)})
		return
	}
	writeResponse(Response{Success: true})
}

// cuePath resolves a cue to an audio file, preferring an override in
// pluginDir/sounds.
func cuePath(cue, pluginDir string) (string, error) {
	name, ok := cues[cue]
	if !ok {
		return "", fmt.Errorf("unknown cue: %q", cue)
	}
	if pluginDir != "" {
		custom := filepath.Join(pluginDir, "sounds", cue+".wav")
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
	}
	return filepath.Join(systemSounds, name+".aiff"), nil
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
