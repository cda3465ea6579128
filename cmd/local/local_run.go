package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jdevelop/placesmap/config"
	"github.com/jdevelop/placesmap/placesapi"
	"github.com/phuslu/log"
	"github.com/twpayne/go-kml"
)

var (
	configDir    = flag.String("config", "", "directory holding config.{yaml,toml,json}, defaults to "+config.DirName)
	flagQuery    = flag.String("q", "", "text query, e.g. \"coffee in Lisbon\"")
	flagLocation = flag.String("location", "", "nearby search center as <lat>,<lng>")
	flagRadius   = flag.Int("radius", 1000, "nearby search radius in meters")
	flagTypes    = flag.String("types", "", "comma separated place types for nearby search")
	flagOut      = flag.String("out", "", "output file, defaults to export-<query>.kml")
)

func outputName() string {
	if *flagOut != "" {
		return *flagOut
	}
	name := *flagQuery
	if name == "" {
		name = *flagLocation
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '/', '\\':
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("export-%s.kml", name)
}

// writeKML stores k in name. The file only counts as written once it has been
// flushed and closed without error.
func writeKML(name string, k *kml.CompoundElement) error {
	w, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := k.WriteIndent(w, "", "  "); err != nil {
		w.Close()
		return fmt.Errorf("write kml: %w", err)
	}
	if err := w.Sync(); err != nil {
		w.Close()
		return fmt.Errorf("sync output: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func main() {

	flag.Parse()

	logger := &log.Logger{
		Level:  log.InfoLevel,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}

	if *flagQuery == "" && *flagLocation == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(config.New(*configDir))
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	client, err := placesapi.NewClient(cfg.APIKey, placesapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		logger.Fatal().Err(err).Msg("create places client")
	}

	ctx := context.Background()
	var k *kml.CompoundElement
	if *flagLocation != "" {
		options := map[string]interface{}{}
		if *flagTypes != "" {
			options["includedTypes"] = strings.Split(*flagTypes, ",")
		}
		k, err = client.NearbyKML(ctx, *flagLocation, *flagRadius, options)
	} else {
		k, err = client.SearchTextKML(ctx, *flagQuery)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("search places")
	}

	name := outputName()
	if err := writeKML(name, k); err != nil {
		logger.Fatal().Err(err).Str("file", name).Msg("write kml")
	}

	logger.Info().Str("file", name).Msg("export written")

}
