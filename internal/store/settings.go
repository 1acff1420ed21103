package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/airrunner/internal/detector"
	"github.com/ayusman/airrunner/internal/gesture"
)

// Setting keys as stored in the settings table.
const (
	KeyJumpThresh   = "jump_thresh"
	KeyDuckThresh   = "duck_thresh"
	KeyLeftThresh   = "left_thresh"
	KeyRightThresh  = "right_thresh"
	KeyCameraIndex  = "camera_index"
	KeyMode         = "mode"
	KeySoundEnabled = "sound_enabled"
	KeyCooldownMS   = "cooldown_ms"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user-adjustable options. The JSON form is flat so the
// threshold keys match the persisted key names.
type Settings struct {
	gesture.ThresholdSet
	CameraIndex  int           `json:"camera_index"`
	Mode         detector.Mode `json:"mode"`
	SoundEnabled bool          `json:"sound_enabled"`
	CooldownMS   int           `json:"cooldown_ms"`
}

// DefaultSettings returns factory settings.
func DefaultSettings() Settings {
	return Settings{
		ThresholdSet: gesture.DefaultThresholds(),
		CameraIndex:  0,
		Mode:         detector.ModeHand,
		SoundEnabled: true,
		CooldownMS:   int(gesture.DefaultCooldown / time.Millisecond),
	}
}

// Thresholds returns the threshold part of the settings.
func (s Settings) Thresholds() gesture.ThresholdSet {
	return s.ThresholdSet
}

// Cooldown returns the gate cooldown as a duration.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.CooldownMS) * time.Millisecond
}

// Validate checks thresholds and the remaining fields.
func (s Settings) Validate() error {
	if err := s.ThresholdSet.Validate(); err != nil {
		return err
	}
	if s.CameraIndex < 0 {
		return fmt.Errorf("%w: camera_index %d", ErrInvalidSettings, s.CameraIndex)
	}
	if _, err := detector.ParseMode(string(s.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.CooldownMS < 0 || s.CooldownMS > 5000 {
		return fmt.Errorf("%w: cooldown_ms %d must be within [0,5000]", ErrInvalidSettings, s.CooldownMS)
	}
	return nil
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value of key or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Load returns the stored settings. Missing or unparsable keys keep their
// defaults, and a stored threshold set that fails validation is replaced by
// the default set as a whole.
func (r *SettingsRepository) Load() (Settings, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Settings{}, err
		}
		raw[k] = v
	}
	if err := rows.Err(); err != nil {
		return Settings{}, err
	}

	s := DefaultSettings()
	loadFloat(raw, KeyJumpThresh, &s.Jump)
	loadFloat(raw, KeyDuckThresh, &s.Duck)
	loadFloat(raw, KeyLeftThresh, &s.Left)
	loadFloat(raw, KeyRightThresh, &s.Right)
	loadInt(raw, KeyCameraIndex, &s.CameraIndex)
	loadInt(raw, KeyCooldownMS, &s.CooldownMS)
	if v, ok := raw[KeySoundEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.SoundEnabled = b
		}
	}
	if v, ok := raw[KeyMode]; ok {
		if m, err := detector.ParseMode(v); err == nil {
			s.Mode = m
		}
	}

	if err := s.ThresholdSet.Validate(); err != nil {
		log.Warn().Err(err).Msg("stored thresholds invalid, using defaults")
		s.ThresholdSet = gesture.DefaultThresholds()
	}
	if s.CameraIndex < 0 {
		s.CameraIndex = 0
	}
	if s.CooldownMS < 0 {
		s.CooldownMS = DefaultSettings().CooldownMS
	}
	return s, nil
}

// Save validates s and writes every key in one transaction.
func (r *SettingsRepository) Save(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, kv := range s.pairs() {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// SaveThresholds replaces only the threshold keys.
func (r *SettingsRepository) SaveThresholds(t gesture.ThresholdSet) error {
	s, err := r.Load()
	if err != nil {
		return err
	}
	s.ThresholdSet = t
	return r.Save(s)
}

func (s Settings) pairs() [][2]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return [][2]string{
		{KeyJumpThresh, f(s.Jump)},
		{KeyDuckThresh, f(s.Duck)},
		{KeyLeftThresh, f(s.Left)},
		{KeyRightThresh, f(s.Right)},
		{KeyCameraIndex, strconv.Itoa(s.CameraIndex)},
		{KeyMode, string(s.Mode)},
		{KeySoundEnabled, strconv.FormatBool(s.SoundEnabled)},
		{KeyCooldownMS, strconv.Itoa(s.CooldownMS)},
	}
}

func loadFloat(raw map[string]string, key string, dst *float64) {
	v, ok := raw[key]
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring unparsable setting")
		return
	}
	*dst = f
}

func loadInt(raw map[string]string, key string, dst *int) {
	v, ok := raw[key]
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring unparsable setting")
		return
	}
	*dst = n
}
