package config

import (
	"fmt"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/input"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("rhythm-game", "A six lane rhythm game for the terminal.")

	Offset      = app.Flag("offset", "Global offset added to every hit time, negative values need the --offset=-20ms form").Default("0ms").Short('o').Envar("RHYTHM_OFFSET").Duration()
	Delay       = app.Flag("delay", "Start delay").Default("1.5s").Short('d').Duration()
	LookAhead   = app.Flag("look-ahead", "How early notes appear").Default("2s").Short('l').Duration()
	FramePeriod = app.Flag("frame-period", "Tick and render period").Default("4ms").Short('p').Duration()
	ScrollSpeed = app.Flag("scroll-speed", "Time a note takes to fall one row, lower is faster").Default("20ms").Short('s').Duration()
	Spacing     = app.Flag("spacing", "Columns between lanes").Default("4").Short('S').Uint16()
	Keys        = app.Flag("keys", "Keys for the six lanes, left to right").Default("sdfjkl").Short('k').Envar("RHYTHM_KEYS").String()
	Device      = app.Flag("device", "Read input from this evdev device instead of the terminal").Envar("RHYTHM_DEVICE").String()
	Difficulty  = app.Flag("difficulty", "Chart index within the file").Default("0").Short('c').Int()
	Measure     = app.Flag("measure", "Start from this measure").Default("0").Short('m').Int()
	Database    = app.Flag("db", "Result database").Default("results.db").Envar("RHYTHM_DB").String()
	LogLevel    = app.Flag("log-level", "debug, info, warn or error").Default("warn").Enum("debug", "info", "warn", "error")
	LogFile     = app.Flag("log-file", "Write logs here instead of stderr").String()

	perfect = app.Flag("perfect", "Perfect window").Default("33.33ms").Duration()
	good    = app.Flag("good", "Good window").Default("66.67ms").Duration()
	bad     = app.Flag("bad", "Bad window").Default("100ms").Duration()
	miss    = app.Flag("miss", "Miss window").Default("200ms").Duration()

	Play      = app.Command("play", "Play a chart").Default()
	PlayChart = Play.Arg("chart", "Chart file (.json or .sm)").Required().ExistingFile()

	Simulate      = app.Command("simulate", "Play a chart with generated input")
	SimulateChart = Simulate.Arg("chart", "Chart file (.json or .sm)").Required().ExistingFile()
	Jitter        = Simulate.Flag("jitter", "Largest random input error").Default("0ms").Short('j').Duration()
	Seed          = Simulate.Flag("seed", "Random seed for jitter").Default("1").Int64()

	Info      = app.Command("info", "Describe the charts in a file")
	InfoChart = Info.Arg("chart", "Chart file (.json or .sm)").Required().ExistingFile()

	History      = app.Command("history", "List saved results for a chart")
	HistoryChart = History.Arg("chart", "Chart file (.json or .sm)").Required().ExistingFile()
)

func init() {
	app.Version("0.3.0")
}

// Parse reads the command line and returns the selected command.
func Parse(args []string) (string, error) {
	cmd, err := app.Parse(args)
	if nil != err {
		return "", err
	}
	if _, err := input.Lanes(*Keys); nil != err {
		return "", err
	}
	if err := Windows().Validate(); nil != err {
		return "", err
	}
	if *FramePeriod <= 0 {
		return "", fmt.Errorf("frame period must be positive, got %v", *FramePeriod)
	}
	return cmd, nil
}

// Chart is the chart argument of the selected command.
func Chart(cmd string) string {
	switch cmd {
	case Simulate.FullCommand():
		return *SimulateChart
	case Info.FullCommand():
		return *InfoChart
	case History.FullCommand():
		return *HistoryChart
	}
	return *PlayChart
}

func Windows() game.Windows {
	return game.NewWindows(*perfect, *good, *bad, *miss)
}
