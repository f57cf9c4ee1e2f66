package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// DefaultTemplate is seeded into new profiles.
const DefaultTemplate = "🚨 EMERGÊNCIA CHEGA! Preciso de ajuda! Local: {LOCATION} Hora: {TIME}"

// MapsLink renders a location as a Google Maps link, or a short notice when
// no fix is available.
func MapsLink(loc domain.Location) string {
	if !loc.HasFix() {
		return "localização indisponível"
	}
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", loc.Latitude, loc.Longitude)
}

// FormatMessage substitutes the recognized placeholders in a template.
// Substitution is pure and total: every {LOCATION}, {TIME}, {NAME} and
// {PHONE} is replaced; anything else is left verbatim.
func FormatMessage(template string, profile domain.UserProfile, loc domain.Location, at time.Time) string {
	return strings.NewReplacer(
		"{LOCATION}", MapsLink(loc),
		"{TIME}", at.Format("02/01/2006 15:04"),
		"{NAME}", profile.Name,
		"{PHONE}", profile.Phone,
	).Replace(template)
}
