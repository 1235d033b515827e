package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubLoader struct {
	raw   map[string]string
	err   error
	calls int
}

func (l *stubLoader) LoadSettings() (map[string]string, error) {
	l.calls++
	return l.raw, l.err
}

func TestSettingsStoreLaadtUitDatabase(t *testing.T) {
	loader := &stubLoader{raw: map[string]string{
		"return_label_fee_incl_vat": "5.95",
		"return_window_days":        "14",
	}}
	store := NewSettingsStore(loader, time.Hour)

	s := store.Get()
	assert.Equal(t, 5.95, s.ReturnLabelFeeInclVAT)
	assert.Equal(t, 14, s.ReturnWindowDays)
	// Niet-gezette sleutels houden hun standaardwaarde.
	assert.Equal(t, 48, s.AbandonedReminderHours)
}

func TestSettingsStoreCachetBinnenTTL(t *testing.T) {
	loader := &stubLoader{raw: map[string]string{}}
	store := NewSettingsStore(loader, time.Hour)

	store.Get()
	store.Get()
	store.Get()
	assert.Equal(t, 1, loader.calls)

	store.Invalidate()
	store.Get()
	assert.Equal(t, 2, loader.calls)
}

func TestSettingsStoreHoudtOudeWaardenBijFout(t *testing.T) {
	loader := &stubLoader{err: errors.New("scylla onbereikbaar")}
	store := NewSettingsStore(loader, time.Hour)

	s := store.Get()
	assert.Equal(t, DefaultSettings(), s)
}

func TestParseSettingsNegeertOngeldigeWaarden(t *testing.T) {
	s := parseSettings(map[string]string{
		"return_label_fee_incl_vat": "gratis",
		"return_window_days":        "-5",
		"abandoned_reminder_hours":  "0",
	}, DefaultSettings())

	assert.Equal(t, DefaultSettings(), s)
}
