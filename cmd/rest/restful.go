package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/jdevelop/placesmap/config"
	"github.com/jdevelop/placesmap/placesapi"
	"github.com/jdevelop/placesmap/restapi"
	"github.com/phuslu/log"
)

var (
	configDir = flag.String("config", "", "directory holding config.{yaml,toml,json}, defaults to "+config.DirName)
	port      = flag.Int("port", 0, "port to listen on, overrides "+config.ServerPort)
	host      = flag.String("host", "", "host to listen on, overrides "+config.ServerHost)
	prefix    = flag.String("prefix", "", "url prefix, must end with /")
)

func main() {

	flag.Parse()

	logger := &log.Logger{
		Level:  log.InfoLevel,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}

	v := config.New(*configDir)
	if *port != 0 {
		v.Set(config.ServerPort, *port)
	}
	if *host != "" {
		v.Set(config.ServerHost, *host)
	}
	if *prefix != "" {
		v.Set(config.ServerPrefix, *prefix)
	}

	cfg, err := config.Load(v)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	client, err := placesapi.NewClient(cfg.APIKey, placesapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		logger.Fatal().Err(err).Msg("create places client")
	}

	svc := restapi.NewServer(client, logger).Router(cfg.Prefix)

	logger.Info().Str("addr", cfg.Addr()).Str("prefix", cfg.Prefix).Msg("started server")

	if err := http.ListenAndServe(cfg.Addr(), svc); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}

}
