package attendance

import (
	"errors"
	"math"
	"testing"
)

func float64p(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		if d := Haversine(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
			t.Errorf("distance(p,p) = %f, want 0", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
		d2 := Haversine(51.5074, -0.1278, 48.8566, 2.3522)
		if math.Abs(d1-d2) > 1e-9 {
			t.Errorf("distance not symmetric: %f vs %f", d1, d2)
		}
	})

	t.Run("paris to london roughly 344km", func(t *testing.T) {
		d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
		if d < 330 || d > 350 {
			t.Errorf("paris-london = %f km, want ~344", d)
		}
	})

	t.Run("small equator offset", func(t *testing.T) {
		// 0.002 degrees of longitude at the equator is about 222 m.
		d := Haversine(0, 0, 0, 0.002)
		if d < 0.2 || d > 0.25 {
			t.Errorf("0.002 deg offset = %f km, want ~0.222", d)
		}
	})
}

func TestCheckGeofence(t *testing.T) {
	t.Run("skipped when course has no coordinates", func(t *testing.T) {
		if err := checkGeofence(nil, nil, nil, nil); err != nil {
			t.Errorf("no course geo: %v", err)
		}
		if err := checkGeofence(float64p(1), nil, nil, nil); err != nil {
			t.Errorf("partial course geo: %v", err)
		}
	})

	t.Run("caller coordinates required", func(t *testing.T) {
		err := checkGeofence(float64p(0), float64p(0), nil, nil)
		if !errors.Is(err, ErrGeolocationRequired) {
			t.Errorf("missing both = %v, want ErrGeolocationRequired", err)
		}
		err = checkGeofence(float64p(0), float64p(0), float64p(0), nil)
		if !errors.Is(err, ErrGeolocationRequired) {
			t.Errorf("missing longitude = %v, want ErrGeolocationRequired", err)
		}
	})

	t.Run("out of range beyond 100m", func(t *testing.T) {
		err := checkGeofence(float64p(0), float64p(0), float64p(0), float64p(0.002))
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("~222m away = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("accepted within 100m", func(t *testing.T) {
		if err := checkGeofence(float64p(0), float64p(0), float64p(0), float64p(0.0005)); err != nil {
			t.Errorf("~55m away: %v", err)
		}
	})
}
