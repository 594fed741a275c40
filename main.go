package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"dobutsu/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	depth := flag.Int("depth", 5, "default alpha-beta search depth")
	debug := flag.Bool("debug", false, "enable debug logging")
	pretty := flag.Bool("pretty", true, "human-readable log output")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if *pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	srv := server.New(logger, *depth)
	logger.Info().Str("addr", *addr).Int("depth", *depth).Msg("serving dobutsu shogi API")
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
