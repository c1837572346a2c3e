// Command txengine is the RC transmitter-side control loop: gamepad in,
// tuned and mixed channels out over a CRSF-style serial link, with a
// UDP tuning channel and a GUI status-file snapshot alongside it.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/config"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/controlplane"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/frame"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/gamepad"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/indicator"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/mapper"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/orchestrator"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/serialport"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/status"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/tuning"
	"github.com/x1HANDEDBILLS/rc-flight-controller/internal/txlog"
)

func main() {
	var (
		configPath    = pflag.StringP("config", "c", "", "Settled parameter set (YAML) to load at startup.")
		serialDevices = pflag.StringArrayP("serial", "s", nil, "Serial device candidate; repeatable, first to open wins.")
		udpPort       = pflag.Int("udp-port", 0, "ControlPlane UDP port (0: use config/default).")
		statusFile    = pflag.String("status-file", "", "GUI status-snapshot file path (empty: use config/default).")
		indicatorChip = pflag.String("indicator-chip", "", "GPIO chip for the link/arm indicator, e.g. gpiochip0. Empty disables it.")
		indicatorLine = pflag.Int("indicator-line", -1, "GPIO line offset for the link/arm indicator.")
		logLevel      = pflag.String("log-level", "info", "Log level: debug, info, warn, error.")
		logTimestamp  = pflag.String("log-timestamp-format", "", "strftime pattern for formatted timestamps (empty: RFC3339); log-line timestamps keep the logger's own format.")
		help          = pflag.Bool("help", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - RC transmitter control engine.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [baud-rate]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	txlog.Init(parseLevel(*logLevel), *logTimestamp)
	logger := txlog.Default()

	settings := loadSettings(*configPath)
	if len(*serialDevices) > 0 {
		settings.SerialDevices = *serialDevices
	}
	if *udpPort != 0 {
		settings.UDPPort = *udpPort
	}
	if *statusFile != "" {
		settings.StatusFile = *statusFile
	}
	if *indicatorChip != "" {
		settings.IndicatorChip = *indicatorChip
	}
	if *indicatorLine >= 0 {
		settings.IndicatorLine = *indicatorLine
	}
	if pflag.NArg() == 1 {
		baud, err := parseBaud(pflag.Arg(0))
		if err != nil {
			logger.Error("invalid positional baud-rate argument", "arg", pflag.Arg(0), "err", err)
			os.Exit(1)
		}
		settings.BaudRate = baud
	}

	store := &frame.TelemetryStore{}
	link, err := serialport.Open(settings.SerialDevices, settings.BaudRate, store)
	if err != nil {
		logger.Error("no serial device could be opened", "candidates", settings.SerialDevices, "err", err)
		os.Exit(1)
	}
	defer link.Close()

	gp, err := openGamepad()
	if err != nil {
		logger.Error("no gamepad subsystem available", "err", err)
		os.Exit(1)
	}
	defer gp.Close()

	m := buildMapper(settings)
	axes := buildAxes(settings)

	ind, err := indicator.Open(settings.IndicatorChip, settings.IndicatorLine)
	if err != nil {
		logger.Warn("indicator: could not request GPIO line, continuing without it", "err", err)
		ind = nil
	}
	if ind != nil {
		defer ind.Close()
	}

	statusW := status.New(settings.StatusFile)

	cpAxes := controlplane.Axes{
		LeftX: axes.LeftX, LeftY: axes.LeftY,
		RightX: axes.RightX, RightY: axes.RightY,
		Trigger0: axes.Trigger0, Trigger1: axes.Trigger1,
	}
	cp, err := controlplane.New(settings.UDPPort, m, cpAxes)
	if err != nil {
		logger.Error("controlplane: could not bind UDP listener", "port", settings.UDPPort, "err", err)
		os.Exit(1)
	}
	defer cp.Close()

	cpDone := make(chan struct{})
	go cp.Run(cpDone)

	orch := orchestrator.New(gp, m, axes, link, store, ind, statusW)

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-term:
				logger.Info("shutdown requested")
				orch.Stop()
				return
			case <-hup:
				reloaded := loadSettings(*configPath)
				applyAxisSettings(axes, reloaded)
				applyChannelSettings(m, reloaded)
				logger.Info("config reloaded on SIGHUP", "config", *configPath)
			}
		}
	}()

	logger.Info("txengine started", "baud", settings.BaudRate, "udp_port", settings.UDPPort, "status_file", settings.StatusFile)
	orch.Run()
	close(cpDone)
	logger.Info("txengine stopped cleanly")
}

// loadSettings loads the settled parameter set from path, or the
// built-in defaults if path is empty. Called both at startup and on
// every SIGHUP reload.
func loadSettings(path string) config.Settings {
	if path == "" {
		return config.Defaults()
	}
	return config.Load(path)
}

// buildMapper builds a Mapper pre-loaded with the settled channel
// routing table.
func buildMapper(s config.Settings) *mapper.Mapper {
	m := mapper.New()
	applyChannelSettings(m, s)
	return m
}

// applyChannelSettings overwrites every channel in m from s.Channels.
// Used both to seed the mapper at startup and to re-apply it live on
// a SIGHUP config reload.
func applyChannelSettings(m *mapper.Mapper, s config.Settings) {
	for i, c := range s.Channels {
		cfg := mapper.ChannelConfig{
			Src: c.Src, Inverted: c.Inverted, IsSplit: c.Split,
			PosSrc: c.PosSrc, NegSrc: c.NegSrc,
			PosCenter: c.PosCenter, PosReverse: c.PosReverse,
			NegCenter: c.NegCenter, NegReverse: c.NegReverse,
		}
		m.SetChannel(i, cfg)
	}
}

// triggerDeadzone is the fixed deadzone for the two trigger axes
// (sample indices 4, 5). It is never configurable — the settled
// parameter set's per-axis deadzone field applies only to the four
// stick axes.
const triggerDeadzone = 0.05

// buildAxes builds the six live AxisTuning cells, seeded with the
// settled per-axis tuning, in sample order: left X/Y, right X/Y,
// trigger 0/1. The trigger cells start with the fixed deadzone, which
// applyAxisSettings never overwrites.
func buildAxes(s config.Settings) orchestrator.Axes {
	axes := orchestrator.Axes{
		LeftX: tuning.Defaults(), LeftY: tuning.Defaults(),
		RightX: tuning.Defaults(), RightY: tuning.Defaults(),
		Trigger0: tuning.DefaultsWithDeadzone(triggerDeadzone),
		Trigger1: tuning.DefaultsWithDeadzone(triggerDeadzone),
	}
	applyAxisSettings(axes, s)
	return axes
}

// applyAxisSettings re-applies the settled per-axis tuning to
// already-built AxisTuning cells, in sample order: left X/Y, right
// X/Y, trigger 0/1. Used both to seed axes at startup and to re-apply
// a SIGHUP config reload live. The trigger axes' deadzone is never
// touched here — it stays fixed at triggerDeadzone for the cell's
// lifetime, never exposed through the settled parameter set.
func applyAxisSettings(axes orchestrator.Axes, s config.Settings) {
	cells := []*tuning.AxisTuning{axes.LeftX, axes.LeftY, axes.RightX, axes.RightY, axes.Trigger0, axes.Trigger1}
	for i, a := range s.Axes {
		t := cells[i]
		if i != 4 && i != 5 {
			t.SetDeadzone(a.Deadzone)
		}
		t.SetSensitivity(a.Sensitivity)
		t.SetSmoothing(a.Smoothing)
		t.SetCurveKind(tuning.CurveKind(a.Curve))
		t.SetExpo(a.Expo)
		t.SetCinematicOn(a.CinematicOn)
		t.SetCineSpeed(a.CineSpeed)
		t.SetCineAccel(a.CineAccel)
	}
}

// openGamepad opens /dev/input/js0 if present and starts watching for
// any later attach/detach — a gamepad not currently plugged in is not
// fatal, it just fills raw inputs with the neutral floor until one
// attaches. Failure to start udev monitoring at all is the "no
// gamepad subsystem" fatal startup condition.
func openGamepad() (gamepad.Source, error) {
	matches, _ := filepath.Glob("/dev/input/js*")
	initial := ""
	if len(matches) > 0 {
		initial = matches[0]
	}
	return gamepad.OpenDynamic(initial)
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func parseBaud(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("txengine: invalid baud rate %q", s)
	}
	return n, nil
}
