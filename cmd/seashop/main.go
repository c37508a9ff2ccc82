package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/m3rciful/seashop/core/config"
	"github.com/m3rciful/seashop/core/elastic"
	"github.com/m3rciful/seashop/core/images"
	"github.com/m3rciful/seashop/core/logger"
	"github.com/m3rciful/seashop/core/session"
	"github.com/m3rciful/seashop/core/shop"
	"github.com/m3rciful/seashop/core/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seashop: %v", err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config; env overrides apply")
		imagesDir  = flag.String("dir", "", "image folder path, overrides config")
	)
	flag.Parse()

	cfg, err := coreconfig.Load(*configPath)
	if err != nil {
		return err
	}
	if *imagesDir != "" {
		cfg.Images.Dir = *imagesDir
	}

	if err := logger.Init(cfg); err != nil {
		return err
	}

	sessions, err := session.NewRedisStore(cfg.Redis)
	if err != nil {
		return err
	}
	defer sessions.Close()

	httpc := telegram.BuildHTTPClient()
	commerce := elastic.New(cfg.ElasticPath, elastic.WithHTTPClient(httpc))

	cache, err := images.New(cfg.Images.Dir, httpc)
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(cfg)
	if err != nil {
		return err
	}

	dispatcher := shop.NewDispatcher(commerce, sessions, cache, telegram.NewSender(bot))
	telegram.RegisterRoutes(bot, dispatcher)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return telegram.Run(ctx, bot, cfg)
}
