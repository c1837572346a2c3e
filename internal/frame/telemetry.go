package frame

import (
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

// GPS carries a decoded 0x02 GPS telemetry frame. Lat/Lon follow the
// CRSF convention of degrees * 1e7; LatDegrees/LonDegrees are the
// convenience floating-point form.
type GPS struct {
	Lat, Lon           int32
	GroundSpeedKPH10   uint16
	HeadingCentideg    uint16
	AltitudeMeters     uint16
	Satellites         uint8
	HDOP               float64 // 0 when absent from the payload
	HDOPPresent        bool
}

// LatDegrees and LonDegrees convert the raw CRSF fixed-point
// coordinates to floating-point degrees.
func (g GPS) LatDegrees() float64 { return float64(g.Lat) / 1e7 }
func (g GPS) LonDegrees() float64 { return float64(g.Lon) / 1e7 }

// Hemisphere reports the coordconv hemisphere pair for this fix.
func (g GPS) Hemisphere() (lat, lon coordconv.Hemisphere) {
	lat = coordconv.HemisphereNorth
	if g.Lat < 0 {
		lat = coordconv.HemisphereSouth
	}
	lon = coordconv.HemisphereNorth // coordconv has no east/west constant set; callers interpret sign directly.
	if g.Lon < 0 {
		lon = coordconv.HemisphereInvalid
	}
	return lat, lon
}

// DistanceFromMeters returns the great-circle distance in meters from
// the given home point, from the s2 angle between the two points. A zero
// home point (0,0) is treated by the caller as "unset" — this method
// computes the distance regardless, it does not interpret the zero value.
func (g GPS) DistanceFromMeters(homeLat, homeLon float64) float64 {
	p := s2.LatLngFromDegrees(g.LatDegrees(), g.LonDegrees())
	home := s2.LatLngFromDegrees(homeLat, homeLon)
	angle := p.Distance(home)
	const earthRadiusMeters = 6371000.0
	return float64(angle) * earthRadiusMeters
}

// Vario carries a decoded 0x07 variometer frame.
type Vario struct {
	VerticalSpeedCMS int16
}

// Battery carries a decoded 0x08 battery frame.
type Battery struct {
	Volts100     uint16
	CurrentA100  uint16
	UsedMAh      uint32 // 24-bit on the wire
	RemainingPct uint8
}

// LinkStats carries a decoded 0x14 link-statistics frame.
type LinkStats struct {
	RSSI1, RSSI2     int8
	LinkQualityUp    uint8
	SNRUp            int8
	Antenna          uint8
	RFMode           uint8
	TXPower          uint8
	RSSIDown         int8
	LinkQualityDown  uint8
	SNRDown          int8
}

// Attitude carries a decoded 0x1E attitude frame. Units are
// 1/10000 radian.
type Attitude struct {
	PitchRad, RollRad, YawRad int16
}

// FlightMode carries a decoded 0x21 flight-mode frame.
type FlightMode struct {
	Name string
}

// Airspeed carries a decoded 0x0A airspeed frame.
type Airspeed struct {
	KPH10 uint16
}

// ESC carries a decoded 0x7E ESC telemetry frame.
type ESC struct {
	RPM  uint16
	TempC uint8
}

// Fuel carries a decoded 0x0B fuel-level frame.
type Fuel struct {
	Level uint16
}

// DeviceInfo carries a decoded 0x29 device-info frame.
type DeviceInfo struct {
	MCUTempC  uint8
	LoadPct   uint8
	Heartbeat uint8
	Armed     uint8
}

// DecodeError reports a frame that failed integrity or parsing rules.
// These never poison the stream — the caller drops the frame and
// resynchronises.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "frame: " + e.Reason }

// DecodeTelemetry parses a complete, CRC-verified telemetry frame
// (the bytes produced by the assembler, including sync/len/type/crc)
// into one of the typed variants above via the returned `any`.
func DecodeTelemetry(raw []byte) (any, error) {
	if len(raw) < 4 {
		return nil, &DecodeError{Reason: "short frame"}
	}
	length := raw[1]
	if int(length)+2 != len(raw) {
		return nil, &DecodeError{Reason: "length mismatch"}
	}
	// CRC is verified by the assembler before a frame reaches here.
	body := raw[2 : len(raw)-1]
	typ := body[0]
	payload := body[1:]

	switch typ {
	case TypeGPS:
		return decodeGPS(payload)
	case TypeVario:
		return decodeVario(payload)
	case TypeBattery:
		return decodeBattery(payload)
	case TypeLinkStats:
		return decodeLinkStats(payload)
	case TypeAttitude:
		return decodeAttitude(payload)
	case TypeFlightMode:
		return decodeFlightMode(payload)
	case TypeAirspeed:
		return decodeAirspeed(payload)
	case TypeESC:
		return decodeESC(payload)
	case TypeFuel:
		return decodeFuel(payload)
	case TypeDeviceInfo:
		return decodeDeviceInfo(payload)
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown type 0x%02X", typ)}
	}
}

func need(payload []byte, n int) error {
	if len(payload) < n {
		return &DecodeError{Reason: "truncated payload"}
	}
	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) int32 {
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func decodeGPS(p []byte) (GPS, error) {
	if err := need(p, 15); err != nil {
		return GPS{}, err
	}
	g := GPS{
		Lat:              be32(p[0:4]),
		Lon:              be32(p[4:8]),
		GroundSpeedKPH10: be16(p[8:10]),
		HeadingCentideg:  be16(p[10:12]),
		AltitudeMeters:   be16(p[12:14]),
		Satellites:       p[14],
	}
	if len(p) >= 19 {
		hdop := uint32(p[15])<<24 | uint32(p[16])<<16 | uint32(p[17])<<8 | uint32(p[18])
		g.HDOP = float64(hdop) / 100
		g.HDOPPresent = true
	}
	return g, nil
}

func decodeVario(p []byte) (Vario, error) {
	if err := need(p, 2); err != nil {
		return Vario{}, err
	}
	return Vario{VerticalSpeedCMS: int16(be16(p[0:2]))}, nil
}

func decodeBattery(p []byte) (Battery, error) {
	if err := need(p, 8); err != nil {
		return Battery{}, err
	}
	used := uint32(p[4])<<16 | uint32(p[5])<<8 | uint32(p[6])
	return Battery{
		Volts100:     be16(p[0:2]),
		CurrentA100:  be16(p[2:4]),
		UsedMAh:      used,
		RemainingPct: p[7],
	}, nil
}

func decodeLinkStats(p []byte) (LinkStats, error) {
	if err := need(p, 10); err != nil {
		return LinkStats{}, err
	}
	return LinkStats{
		RSSI1:           int8(p[0]),
		RSSI2:           int8(p[1]),
		LinkQualityUp:   p[2],
		SNRUp:           int8(p[3]),
		Antenna:         p[4],
		RFMode:          p[5],
		TXPower:         p[6],
		RSSIDown:        int8(p[7]),
		LinkQualityDown: p[8],
		SNRDown:         int8(p[9]),
	}, nil
}

func decodeAttitude(p []byte) (Attitude, error) {
	if err := need(p, 6); err != nil {
		return Attitude{}, err
	}
	return Attitude{
		PitchRad: int16(be16(p[0:2])),
		RollRad:  int16(be16(p[2:4])),
		YawRad:   int16(be16(p[4:6])),
	}, nil
}

func decodeFlightMode(p []byte) (FlightMode, error) {
	end := len(p)
	for i, b := range p {
		if b == 0 {
			end = i
			break
		}
	}
	return FlightMode{Name: string(p[:end])}, nil
}

func decodeAirspeed(p []byte) (Airspeed, error) {
	if err := need(p, 2); err != nil {
		return Airspeed{}, err
	}
	return Airspeed{KPH10: be16(p[0:2])}, nil
}

func decodeESC(p []byte) (ESC, error) {
	if err := need(p, 3); err != nil {
		return ESC{}, err
	}
	return ESC{RPM: be16(p[0:2]), TempC: p[2]}, nil
}

func decodeFuel(p []byte) (Fuel, error) {
	if err := need(p, 2); err != nil {
		return Fuel{}, err
	}
	return Fuel{Level: be16(p[0:2])}, nil
}

func decodeDeviceInfo(p []byte) (DeviceInfo, error) {
	if err := need(p, 4); err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{MCUTempC: p[0], LoadPct: p[1], Heartbeat: p[2], Armed: p[3]}, nil
}
