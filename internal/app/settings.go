package app

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/klabast/wb-services/dayoff-planner/internal/storage"
)

// Settings holds the advance-notice policy parameters.
type Settings struct {
	AdvanceDays    int    `json:"advanceDays"`
	EarlyExtraDays int    `json:"earlyExtraDays"`
	SubmitByTime   string `json:"submitByTime"`
	EarlyTime      string `json:"earlyTime"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		AdvanceDays:    DefaultAdvanceDays,
		EarlyExtraDays: DefaultEarlyExtraDays,
		SubmitByTime:   DefaultSubmitByTime,
		EarlyTime:      DefaultEarlyTime,
	}
}

// EarlyOffsetDays is the early-reminder offset. Always derived, never stored.
func (s Settings) EarlyOffsetDays() int {
	return s.AdvanceDays + s.EarlyExtraDays
}

// SettingsStore reads and writes Settings through the persistence boundary.
type SettingsStore struct {
	kv  storage.KV
	log zerolog.Logger
}

// NewSettingsStore creates a store over the given KV.
func NewSettingsStore(kv storage.KV, log zerolog.Logger) *SettingsStore {
	return &SettingsStore{kv: kv, log: log}
}

// Load returns the persisted settings. It never fails: a missing record, an
// unreadable store or a malformed field all degrade to the corresponding
// default, field by field.
func (st *SettingsStore) Load() Settings {
	raw, ok, err := st.kv.Get(SettingsKey)
	if err != nil {
		st.log.Warn().Err(err).Msg("settings read failed, using defaults")
		return DefaultSettings()
	}
	if !ok {
		return DefaultSettings()
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		st.log.Warn().Err(err).Msg("settings record malformed, using defaults")
		return DefaultSettings()
	}

	s := DefaultSettings()
	s.AdvanceDays = dayCountField(fields["advanceDays"], DefaultAdvanceDays)
	s.EarlyExtraDays = dayCountField(fields["earlyExtraDays"], DefaultEarlyExtraDays)
	s.SubmitByTime = clockField(fields["submitByTime"], DefaultSubmitByTime)
	s.EarlyTime = clockField(fields["earlyTime"], DefaultEarlyTime)
	return s
}

// normalized clamps day counts to non-negative and replaces malformed
// clock strings with their defaults.
func (s Settings) normalized() Settings {
	if s.AdvanceDays < 0 {
		s.AdvanceDays = 0
	}
	if s.EarlyExtraDays < 0 {
		s.EarlyExtraDays = 0
	}
	if _, _, ok := parseClock(s.SubmitByTime); !ok {
		s.SubmitByTime = DefaultSubmitByTime
	}
	if _, _, ok := parseClock(s.EarlyTime); !ok {
		s.EarlyTime = DefaultEarlyTime
	}
	return s
}

// Save persists the full four-field structure, overwriting any prior value.
func (st *SettingsStore) Save(s Settings) error {
	raw, err := json.Marshal(s.normalized())
	if err != nil {
		return err
	}
	return st.kv.Set(SettingsKey, string(raw))
}

// Reset restores and returns the defaults.
func (st *SettingsStore) Reset() (Settings, error) {
	if err := st.Save(DefaultSettings()); err != nil {
		return Settings{}, err
	}
	return st.Load(), nil
}

// dayCountField decodes a non-negative day count, flooring fractional
// values. Anything else falls back to def.
func dayCountField(raw json.RawMessage, def int) int {
	if raw == nil {
		return def
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return def
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	floored := int(math.Floor(n))
	if floored < 0 {
		return 0
	}
	return floored
}

// clockField decodes an "HH:MM" 24h string, falling back to def.
func clockField(raw json.RawMessage, def string) string {
	if raw == nil {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	if _, _, ok := parseClock(s); !ok {
		return def
	}
	return s
}

// parseClock parses a zero-padded "HH:MM" 24h time.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
