// Package main is the keyboard plugin. It turns game commands into key
// presses on macOS through System Events.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
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

// PressParams selects the key to press.
type PressParams struct {
	Key string `json:"key"`
}

// keyCodes maps named keys to macOS virtual key codes.
var keyCodes = map[string]int{
	"up":     126,
	"down":   125,
	"left":   123,
	"right":  124,
	"esc":    53,
	"escape": 53,
	"space":  49,
	"enter":  36,
	"return": 36,
	"tab":    48,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "press" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	var p PressParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to parse params: %v", err)})
		return
	}

	script, err := pressScript(p.Key)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}
	if err := runAppleScript(script); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("press %s failed: %v", p.Key, err)})
		return
	}
	writeResponse(Response{Success: true})
}

// pressScript builds the AppleScript for a single key press. Named keys use
// key codes; a single printable character is typed as a keystroke.
func pressScript(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		return fmt.Sprintf(`tell application "System Events" to key code %d`, code), nil
	}
	if len([]rune(key)) == 1 && key != `"` && key != `\` {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key), nil
	}
	return "", fmt.Errorf("unsupported key: %q", key)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
