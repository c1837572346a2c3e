package frame

import "sync"

// TelemetryStore holds the latest decoded value of each telemetry
// variant. Single writer (the ingress drain), readers take a
// snapshot via Snapshot — no field is ever read mid-update.
type TelemetryStore struct {
	mu sync.RWMutex

	gps        GPS
	hasGPS     bool
	vario      Vario
	hasVario   bool
	battery    Battery
	hasBattery bool
	link       LinkStats
	hasLink    bool
	attitude   Attitude
	hasAtt     bool
	mode       FlightMode
	hasMode    bool
	airspeed   Airspeed
	hasAir     bool
	esc        ESC
	hasESC     bool
	fuel       Fuel
	hasFuel    bool
	device     DeviceInfo
	hasDevice  bool
}

// Apply updates the store from a decoded telemetry value, per the
// concrete type returned by DecodeTelemetry.
func (s *TelemetryStore) Apply(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case GPS:
		s.gps, s.hasGPS = t, true
	case Vario:
		s.vario, s.hasVario = t, true
	case Battery:
		s.battery, s.hasBattery = t, true
	case LinkStats:
		s.link, s.hasLink = t, true
	case Attitude:
		s.attitude, s.hasAtt = t, true
	case FlightMode:
		s.mode, s.hasMode = t, true
	case Airspeed:
		s.airspeed, s.hasAir = t, true
	case ESC:
		s.esc, s.hasESC = t, true
	case Fuel:
		s.fuel, s.hasFuel = t, true
	case DeviceInfo:
		s.device, s.hasDevice = t, true
	}
}

// Snapshot is an immutable copy of everything the store currently holds.
type Snapshot struct {
	GPS        GPS
	HasGPS     bool
	Vario      Vario
	HasVario   bool
	Battery    Battery
	HasBattery bool
	Link       LinkStats
	HasLink    bool
	Attitude   Attitude
	HasAtt     bool
	Mode       FlightMode
	HasMode    bool
	Airspeed   Airspeed
	HasAir     bool
	ESC        ESC
	HasESC     bool
	Fuel       Fuel
	HasFuel    bool
	Device     DeviceInfo
	HasDevice  bool
}

// Snapshot returns a point-in-time copy of the store.
func (s *TelemetryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		GPS: s.gps, HasGPS: s.hasGPS,
		Vario: s.vario, HasVario: s.hasVario,
		Battery: s.battery, HasBattery: s.hasBattery,
		Link: s.link, HasLink: s.hasLink,
		Attitude: s.attitude, HasAtt: s.hasAtt,
		Mode: s.mode, HasMode: s.hasMode,
		Airspeed: s.airspeed, HasAir: s.hasAir,
		ESC: s.esc, HasESC: s.hasESC,
		Fuel: s.fuel, HasFuel: s.hasFuel,
		Device: s.device, HasDevice: s.hasDevice,
	}
}

// Connected reports whether any telemetry has arrived at all — used
// to drive the link indicator.
func (s Snapshot) Connected() bool {
	return s.HasGPS || s.HasVario || s.HasBattery || s.HasLink ||
		s.HasAtt || s.HasMode || s.HasAir || s.HasESC || s.HasFuel || s.HasDevice
}
