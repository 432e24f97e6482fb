// cmd/forthic-server/main.go
//
// Execution bridge daemon: serves the standard interpreter, plus any
// runtime-specific modules listed in a YAML config, over HTTP/JSON.

package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/forthic-lang/forthic"
	"github.com/forthic-lang/forthic/remote"
)

func main() {
	addr := flag.String("addr", ":8044", "listen address")
	modulesConfig := flag.String("modules-config", "",
		"YAML file listing runtime-specific modules (env FORTHIC_MODULES_CONFIG)")
	flag.Parse()

	initLogger("forthic-server")

	if *modulesConfig == "" {
		*modulesConfig = os.Getenv("FORTHIC_MODULES_CONFIG")
	}

	srv := remote.NewServer(forthic.NewStandardInterpreter())

	if *modulesConfig != "" {
		cfg, err := remote.LoadModulesConfig(*modulesConfig)
		if err != nil {
			log.Fatal().Str("path", *modulesConfig).Err(err).Msg("cannot load modules config")
		}
		if err := remote.InstallModules(srv, cfg); err != nil {
			log.Fatal().Err(err).Msg("cannot install runtime modules")
		}
	}

	if err := srv.Serve(*addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func initLogger(app string) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Str("app", app).Logger()
}
