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

package nearby

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/Maycon-Saviole/chega2/internal/domain"
)

// Wire constants for the nearby-alert advertisement payload.
const (
	SyncByte = 0xC4
	Version  = 0x01

	FlagNeedsHelp = 0x01

	// CompanyID marks our manufacturer-data blocks. 0xFFFF is reserved
	// for testing and internal use by the Bluetooth SIG.
	CompanyID = 0xFFFF

	payloadLen = 16

	// Coordinates travel as int32 with 1e-7 degree resolution.
	coordScale = 1e7
)

var (
	ErrShortPayload = errors.New("nearby: payload too short")
	ErrBadSync      = errors.New("nearby: bad sync byte")
	ErrBadVersion   = errors.New("nearby: unsupported version")
	ErrBadChecksum  = errors.New("nearby: checksum mismatch")
)

// EncodeAlert packs a NearbyAlert into the 16-byte advertisement payload:
// sync, version, flags, lat (int32 LE), lon (int32 LE), unix time
// (uint32 LE), XOR checksum.
func EncodeAlert(a domain.NearbyAlert) []byte {
	msg := make([]byte, payloadLen)
	msg[0] = SyncByte
	msg[1] = Version
	if a.NeedsHelp {
		msg[2] |= FlagNeedsHelp
	}
	binary.LittleEndian.PutUint32(msg[3:7], uint32(int32(a.Latitude*coordScale)))
	binary.LittleEndian.PutUint32(msg[7:11], uint32(int32(a.Longitude*coordScale)))
	binary.LittleEndian.PutUint32(msg[11:15], uint32(a.Timestamp.Unix()))

	var checksum byte
	for i := 0; i < payloadLen-1; i++ {
		checksum ^= msg[i]
	}
	msg[payloadLen-1] = checksum

	return msg
}

// DecodeAlert validates and unpacks an advertisement payload.
func DecodeAlert(data []byte) (domain.NearbyAlert, error) {
	if len(data) < payloadLen {
		return domain.NearbyAlert{}, ErrShortPayload
	}
	if data[0] != SyncByte {
		return domain.NearbyAlert{}, ErrBadSync
	}
	if data[1] != Version {
		return domain.NearbyAlert{}, ErrBadVersion
	}

	var checksum byte
	for i := 0; i < payloadLen-1; i++ {
		checksum ^= data[i]
	}
	if checksum != data[payloadLen-1] {
		return domain.NearbyAlert{}, ErrBadChecksum
	}

	return domain.NearbyAlert{
		NeedsHelp: data[2]&FlagNeedsHelp != 0,
		Latitude:  float64(int32(binary.LittleEndian.Uint32(data[3:7]))) / coordScale,
		Longitude: float64(int32(binary.LittleEndian.Uint32(data[7:11]))) / coordScale,
		Timestamp: time.Unix(int64(binary.LittleEndian.Uint32(data[11:15])), 0).UTC(),
	}, nil
}
