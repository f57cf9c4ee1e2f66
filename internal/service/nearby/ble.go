package nearby

import (
	"fmt"
	"sync"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"

	"tinygo.org/x/bluetooth"
)

// AdvertiseDuration bounds one broadcast burst. Re-broadcasting is the
// caller's decision (extra alerts restart the burst).
const AdvertiseDuration = 60 * time.Second

// BLEService broadcasts emergency alerts over BLE advertisements and scans
// for alerts from nearby devices running the same app. No pairing, no
// connection: everything travels in manufacturer data.
type BLEService struct {
	adapter *bluetooth.Adapter

	mu       sync.Mutex
	adv      *bluetooth.Advertisement
	stopTime *time.Timer
	scanning bool
}

func NewBLEService() *BLEService {
	return &BLEService{adapter: bluetooth.DefaultAdapter}
}

// Broadcast starts advertising the alert payload. A broadcast already in
// flight is replaced by the new payload.
func (s *BLEService) Broadcast(alert domain.NearbyAlert) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("bluetooth error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adv != nil {
		s.adv.Stop()
		s.stopTime.Stop()
	}

	adv := s.adapter.DefaultAdvertisement()
	err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName: "CHEGA",
		ManufacturerData: []bluetooth.ManufacturerDataElement{
			{CompanyID: CompanyID, Data: EncodeAlert(alert)},
		},
	})
	if err != nil {
		return fmt.Errorf("advertisement config: %w", err)
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("advertisement start: %w", err)
	}

	fmt.Println("[BLE] Broadcasting nearby alert")
	s.adv = adv
	s.stopTime = time.AfterFunc(AdvertiseDuration, s.StopBroadcast)
	return nil
}

// StopBroadcast ends the current advertisement burst, if any.
func (s *BLEService) StopBroadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adv != nil {
		s.adv.Stop()
		s.adv = nil
	}
	if s.stopTime != nil {
		s.stopTime.Stop()
		s.stopTime = nil
	}
}

// Listen scans for alert advertisements from nearby devices and delivers
// each decoded alert to onAlert. It keeps scanning until StopListen.
func (s *BLEService) Listen(onAlert func(domain.NearbyAlert)) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("bluetooth error: %w", err)
	}

	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil
	}
	s.scanning = true
	s.mu.Unlock()

	go func() {
		err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			for _, md := range result.ManufacturerData() {
				if md.CompanyID != CompanyID {
					continue
				}
				alert, err := DecodeAlert(md.Data)
				if err != nil {
					continue
				}
				onAlert(alert)
			}
		})
		if err != nil {
			fmt.Println("[BLE] Scan error:", err)
		}
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()
	return nil
}

// StopListen cancels the scan started by Listen.
func (s *BLEService) StopListen() {
	s.adapter.StopScan()
}
