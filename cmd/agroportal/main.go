package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agronet/agroportal/config"
	"github.com/agronet/agroportal/internal/adminapi"
	"github.com/agronet/agroportal/internal/app"
	"github.com/agronet/agroportal/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	confFile = flag.String("c", "/etc/agroportal.yml", "config file")
	initDB   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("agroportal", version)
		return
	}

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDB {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(cfg, application.DB())
	adminapi.RegisterRoutes(application.Bus())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return webserver.Echo().Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
