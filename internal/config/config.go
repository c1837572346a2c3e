// Package config loads the settled parameter set the engine starts
// from: initial per-axis tuning, the initial channel-routing table,
// serial device preferences, and the handful of network/file paths
// the rest of the system needs. File-format ownership otherwise
// belongs to the external GUI; this package only needs to read
// whatever that GUI last wrote, and must never treat a missing or
// malformed file as fatal.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

// AxisSettings is the on-disk shape of one axis' settled tuning.
type AxisSettings struct {
	Deadzone    float32 `yaml:"deadzone"`
	Sensitivity float32 `yaml:"sensitivity"`
	Smoothing   float32 `yaml:"smoothing"`
	Curve       int32   `yaml:"curve"`
	Expo        float32 `yaml:"expo"`
	CinematicOn bool    `yaml:"cinematic_on"`
	CineSpeed   float32 `yaml:"cine_speed"`
	CineAccel   float32 `yaml:"cine_accel"`
}

// ChannelSettings is the on-disk shape of one channel's routing.
type ChannelSettings struct {
	Src        int  `yaml:"src"`
	Inverted   bool `yaml:"inverted,omitempty"`
	Split      bool `yaml:"split,omitempty"`
	PosSrc     int  `yaml:"pos_src,omitempty"`
	NegSrc     int  `yaml:"neg_src,omitempty"`
	PosCenter  bool `yaml:"pos_center,omitempty"`
	PosReverse bool `yaml:"pos_reverse,omitempty"`
	NegCenter  bool `yaml:"neg_center,omitempty"`
	NegReverse bool `yaml:"neg_reverse,omitempty"`
}

// Settings is the full settled parameter set.
type Settings struct {
	SerialDevices []string          `yaml:"serial_devices"`
	BaudRate      int               `yaml:"baud_rate"`
	UDPPort       int               `yaml:"udp_port"`
	StatusFile    string            `yaml:"status_file"`
	Axes          [6]AxisSettings   `yaml:"axes"`
	Channels      [16]ChannelSettings `yaml:"channels"`
	HomeLat       float64           `yaml:"home_lat,omitempty"`
	HomeLon       float64           `yaml:"home_lon,omitempty"`
	IndicatorChip string            `yaml:"indicator_chip,omitempty"`
	IndicatorLine int               `yaml:"indicator_line,omitempty"`
}

// Defaults returns the built-in settled parameter set: no deadzone,
// unity sensitivity, linear curve, every channel at the neutral floor.
func Defaults() Settings {
	var s Settings
	s.SerialDevices = []string{"/dev/ttyUSB0", "/dev/ttyACM0"}
	s.BaudRate = 420000
	s.UDPPort = 5005
	s.StatusFile = "/tmp/txengine_status.txt"
	for i := range s.Axes {
		s.Axes[i] = AxisSettings{Sensitivity: 1, CineSpeed: 5, CineAccel: 5}
	}
	for i := range s.Channels {
		s.Channels[i] = ChannelSettings{Src: mapper.ChannelCount + 6} // 22, the always-low source
	}
	return s
}

/*-------------------------------------------------------------
 *
 * Name:	Load
 *
 * Purpose:	Load the settled parameter set from a YAML file.
 *
 * Inputs:	path	- file to read.
 *
 * Returns:	Parsed Settings on success; Defaults() with a logged
 *		warning on any error (missing file, bad YAML, etc.) —
 *		never an error the caller must treat as fatal.
 *
 *--------------------------------------------------------------*/

func Load(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		txlog.Default().Warn("config: could not read settled parameter file, using defaults", "path", path, "err", err)
		return Defaults()
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		txlog.Default().Warn("config: could not parse settled parameter file, using defaults", "path", path, "err", err)
		return Defaults()
	}

	fillDefaults(&s)
	return s
}

// fillDefaults back-fills any zero-valued top-level fields so a
// partially-specified file doesn't leave the engine without a serial
// device list, port, or status path.
func fillDefaults(s *Settings) {
	d := Defaults()
	if len(s.SerialDevices) == 0 {
		s.SerialDevices = d.SerialDevices
	}
	if s.BaudRate == 0 {
		s.BaudRate = d.BaudRate
	}
	if s.UDPPort == 0 {
		s.UDPPort = d.UDPPort
	}
	if s.StatusFile == "" {
		s.StatusFile = d.StatusFile
	}
	for i := range s.Axes {
		if s.Axes[i].Sensitivity == 0 {
			s.Axes[i].Sensitivity = 1
		}
		if s.Axes[i].CineSpeed == 0 {
			s.Axes[i].CineSpeed = 5
		}
		if s.Axes[i].CineAccel == 0 {
			s.Axes[i].CineAccel = 5
		}
	}
}
