package nearby

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

func TestEncodeDecodeAlert(t *testing.T) {
	in := domain.NearbyAlert{
		Latitude:  -23.5505199,
		Longitude: -46.6333094,
		NeedsHelp: true,
		Timestamp: time.Date(2026, 3, 8, 21, 30, 0, 0, time.UTC),
	}

	buf := EncodeAlert(in)
	if len(buf) != 16 {
		t.Fatalf("payload must be 16 bytes, got %d", len(buf))
	}

	out, err := DecodeAlert(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.NeedsHelp {
		t.Fatal("needs-help flag lost")
	}
	if math.Abs(out.Latitude-in.Latitude) > 1e-6 || math.Abs(out.Longitude-in.Longitude) > 1e-6 {
		t.Fatalf("coordinates degraded: %+v", out)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Fatalf("timestamp changed: %v vs %v", out.Timestamp, in.Timestamp)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	good := EncodeAlert(domain.NearbyAlert{Latitude: 1, Longitude: 2, Timestamp: time.Now()})

	short := good[:10]
	if _, err := DecodeAlert(short); !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}

	badSync := append([]byte(nil), good...)
	badSync[0] = 0x00
	if _, err := DecodeAlert(badSync); !errors.Is(err, ErrBadSync) {
		t.Fatalf("expected ErrBadSync, got %v", err)
	}

	badVersion := append([]byte(nil), good...)
	badVersion[1] = 0x07
	if _, err := DecodeAlert(badVersion); !errors.Is(err, ErrBadVersion) {
		t.Fatalf("expected ErrBadVersion, got %v", err)
	}

	flipped := append([]byte(nil), good...)
	flipped[5] ^= 0xFF
	if _, err := DecodeAlert(flipped); !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("expected ErrBadChecksum, got %v", err)
	}
}

func TestMockLoopsBack(t *testing.T) {
	m := NewMockService()
	var got []domain.NearbyAlert
	if err := m.Listen(func(a domain.NearbyAlert) { got = append(got, a) }); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := m.Broadcast(domain.NearbyAlert{NeedsHelp: true}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(got) != 1 || !got[0].NeedsHelp {
		t.Fatalf("loopback failed: %+v", got)
	}
}
