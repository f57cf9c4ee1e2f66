// CHEGA! - Personal safety companion for emergency alerts and trip monitoring.
// Copyright (C) 2026  Maycon Saviole
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package channels

import (
	"fmt"
	"net/url"
	"os/exec"
	stdruntime "runtime"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Broadcaster is the nearby-alert delivery dependency of the desktop
// channel set.
type Broadcaster interface {
	Broadcast(alert domain.NearbyAlert) error
}

// DesktopChannels delivers alerts through the host OS: sms:/tel: URI
// handlers for messaging and calls, the native notifier for local
// notifications, and a Broadcaster for nearby devices.
type DesktopChannels struct {
	broadcaster Broadcaster
}

func NewDesktopChannels(broadcaster Broadcaster) *DesktopChannels {
	return &DesktopChannels{broadcaster: broadcaster}
}

// ShareOrSMS opens the default messaging handler with the text prefilled.
func (d *DesktopChannels) ShareOrSMS(contact domain.Contact, message string) error {
	uri := fmt.Sprintf("sms:%s?body=%s", contact.Phone, url.QueryEscape(message))
	return openURI(uri)
}

// Dial opens the default telephony handler for the number.
func (d *DesktopChannels) Dial(number string) error {
	return openURI("tel:" + number)
}

// ShowNotification posts a local notification through the platform notifier.
func (d *DesktopChannels) ShowNotification(title, body string, data map[string]string) error {
	var cmd *exec.Cmd

	switch stdruntime.GOOS {
	case "linux":
		cmd = exec.Command("notify-send", "-u", "critical", title, body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "windows":
		cmd = exec.Command("msg", "*", title+": "+body)
	default:
		return fmt.Errorf("notifications unsupported on %s", stdruntime.GOOS)
	}

	return cmd.Start()
}

// BroadcastNearby hands the alert to the configured broadcaster.
func (d *DesktopChannels) BroadcastNearby(alert domain.NearbyAlert) error {
	if d.broadcaster == nil {
		return fmt.Errorf("no nearby broadcaster configured")
	}
	return d.broadcaster.Broadcast(alert)
}

// openURI dispatches a URI to the OS default handler.
func openURI(uri string) error {
	var cmd *exec.Cmd

	switch stdruntime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", uri)
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	default:
		return fmt.Errorf("unsupported platform: %s", stdruntime.GOOS)
	}

	return cmd.Start()
}
