package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// viper keys read by Init when no Options are given
const (
	LevelKey   = "log.level"
	FormatKey  = "log.format"
	NoColorKey = "log.no_color"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Options struct {
	Level   string
	Format  string
	NoColor bool

	// Out defaults to os.Stderr.
	Out io.Writer
}

// OptionsFromViper reads the log settings bound by the root command.
func OptionsFromViper(v *viper.Viper) *Options {
	return &Options{
		Level:   v.GetString(LevelKey),
		Format:  v.GetString(FormatKey),
		NoColor: v.GetBool(NoColorKey),
	}
}

// InitDefault sets up a console logger at info level, used until flags are parsed.
func InitDefault() {
	Init(&Options{Level: "info", Format: FormatConsole})
}

// Init configures the global zerolog logger. A nil opts reads the global viper instance.
// Unknown levels fall back to info.
func Init(opts *Options) {
	if opts == nil {
		opts = OptionsFromViper(viper.GetViper())
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	if !strings.EqualFold(opts.Format, FormatJSON) {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.TimeOnly,
		}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	// requests without a logger in their context still log through the global one
	zerolog.DefaultContextLogger = &log.Logger
}
