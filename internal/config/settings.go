package config

import (
	"log"
	"strconv"
	"sync"
	"time"
)

// Settings bevat de winkelbrede instellingen die in de settings-tabel staan.
// Ze worden één keer per cache-interval geladen en via dependency injection
// doorgegeven, in plaats van ad hoc per handler uit de database te komen.
type Settings struct {
	ReturnLabelFeeInclVAT  float64 // vaste kosten voor een retourlabel, incl. btw
	ReturnWindowDays       int     // aantal dagen na levering waarin retour mag
	FreeShippingThreshold  float64
	AbandonedReminderHours int // na zoveel uur onbetaald label sturen we een herinnering
}

// DefaultSettings zijn de waarden wanneer de settings-tabel (nog) leeg is.
func DefaultSettings() Settings {
	return Settings{
		ReturnLabelFeeInclVAT:  4.95,
		ReturnWindowDays:       30,
		FreeShippingThreshold:  75.0,
		AbandonedReminderHours: 48,
	}
}

// SettingsLoader haalt de rauwe key/value-paren op (ScyllaDB in productie).
type SettingsLoader interface {
	LoadSettings() (map[string]string, error)
}

// SettingsStore cachet de instellingen voor een begrensd interval.
type SettingsStore struct {
	loader SettingsLoader
	ttl    time.Duration

	mu       sync.RWMutex
	current  Settings
	loadedAt time.Time
}

func NewSettingsStore(loader SettingsLoader, ttl time.Duration) *SettingsStore {
	return &SettingsStore{
		loader:  loader,
		ttl:     ttl,
		current: DefaultSettings(),
	}
}

// Get geeft de gecachte instellingen terug en ververst ze wanneer de TTL
// verlopen is. Een mislukte refresh laat de vorige waarden staan.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	if time.Since(s.loadedAt) < s.ttl {
		defer s.mu.RUnlock()
		return s.current
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.loadedAt) < s.ttl {
		return s.current
	}

	raw, err := s.loader.LoadSettings()
	if err != nil {
		log.Printf("⚠️ Instellingen verversen mislukt, we houden de oude waarden: %v", err)
		s.loadedAt = time.Now()
		return s.current
	}

	s.current = parseSettings(raw, s.current)
	s.loadedAt = time.Now()
	return s.current
}

// Invalidate forceert een refresh bij de eerstvolgende Get.
func (s *SettingsStore) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

func parseSettings(raw map[string]string, prev Settings) Settings {
	out := prev

	if v, ok := raw["return_label_fee_incl_vat"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			out.ReturnLabelFeeInclVAT = f
		}
	}
	if v, ok := raw["return_window_days"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.ReturnWindowDays = n
		}
	}
	if v, ok := raw["free_shipping_threshold"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			out.FreeShippingThreshold = f
		}
	}
	if v, ok := raw["abandoned_reminder_hours"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.AbandonedReminderHours = n
		}
	}

	return out
}
