package timezone

import (
	"testing"
	"time"
)

var testZones = []string{"America/Santiago", "America/Sao_Paulo", "UTC"}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()

	n, err := NewNormalizer(testZones, "America/Santiago")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNewNormalizerUnknownZone(t *testing.T) {
	if _, err := NewNormalizer([]string{"Mars/Olympus"}, "Mars/Olympus"); err == nil {
		t.Fatal("ожидалась ошибка для несуществующей зоны")
	}
}

func TestNewNormalizerDefaultNotSupported(t *testing.T) {
	if _, err := NewNormalizer([]string{"UTC"}, "America/Santiago"); err == nil {
		t.Fatal("ожидалась ошибка: зона по умолчанию вне списка")
	}
}

func TestRoundTrip(t *testing.T) {
	n := newTestNormalizer(t)

	// моменты в разные сезоны, чтобы покрыть переходы на летнее время
	instants := []time.Time{
		time.Date(2025, time.January, 14, 9, 30, 0, 0, time.UTC),
		time.Date(2025, time.April, 6, 23, 59, 0, 0, time.UTC),
		time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.September, 8, 12, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 31, 18, 45, 0, 0, time.UTC),
	}

	for _, zone := range testZones {
		for _, utc := range instants {
			local, sub := n.ToZone(utc, zone)
			if sub {
				t.Fatalf("неожиданная замена зоны %s", zone)
			}

			back, _ := n.ToUTC(local, zone)
			if !back.Equal(utc) {
				t.Errorf("зона %s: round-trip %v -> %v -> %v", zone, utc, local, back)
			}
		}
	}
}

func TestUnsupportedZoneSubstituted(t *testing.T) {
	n := newTestNormalizer(t)

	wall := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	utc, substituted := n.ToUTC(wall, "Europe/Paris")
	if !substituted {
		t.Fatal("ожидалась замена неподдерживаемой зоны")
	}

	expected, sub := n.ToUTC(wall, "America/Santiago")
	if sub {
		t.Fatal("зона по умолчанию не должна подменяться")
	}
	if !utc.Equal(expected) {
		t.Errorf("подмена зоны: получено %v, ожидалось %v", utc, expected)
	}
}

func TestToUTCInterpretsWallClock(t *testing.T) {
	n := newTestNormalizer(t)

	// 09:00 по Сантьяго в январе (UTC-3) = 12:00 UTC
	wall := time.Date(2025, time.January, 14, 9, 0, 0, 0, time.UTC)
	utc, _ := n.ToUTC(wall, "America/Santiago")

	expected := time.Date(2025, time.January, 14, 12, 0, 0, 0, time.UTC)
	if !utc.Equal(expected) {
		t.Errorf("получено %v, ожидалось %v", utc, expected)
	}
}

func TestSupportedSorted(t *testing.T) {
	n := newTestNormalizer(t)

	names := n.Supported()
	if len(names) != len(testZones) {
		t.Fatalf("получено %d зон, ожидалось %d", len(names), len(testZones))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("список зон не отсортирован: %v", names)
		}
	}
}
