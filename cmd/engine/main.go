package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/http"
	"github.com/hxuan190/arb-engine/internal/services/feed"
	"github.com/hxuan190/arb-engine/internal/services/market"
	"github.com/hxuan190/arb-engine/internal/services/router"
	"github.com/hxuan190/arb-engine/internal/services/sink"
)

func main() {
	// GOGC, GOMAXPROCS and GOMEMLIMIT tuned for the hot event path
	common.InitRuntimeForHFT()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using process environment")
	}

	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.EngineConfig{},
		&config.FeedConfig{},
	)

	// Start order matters: the market cache and the catalog must exist
	// before the feed starts pushing events, and the sink must be draining
	// before the router can emit.
	dic, err := container.New(
		conf,

		&market.Service{},
		&router.Service{},
		&sink.Service{},
		&feed.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// Run blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
