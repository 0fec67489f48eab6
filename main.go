package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	demo "github.com/armature-dev/armature/app"
	"github.com/armature-dev/armature/framework/app"
	"github.com/armature-dev/armature/framework/container"
	armhttp "github.com/armature-dev/armature/framework/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "armature:", err)
		os.Exit(1)
	}
}

func run() error {
	application, err := app.New() // loads .env and armature.yaml when present
	if err != nil {
		return err
	}
	application.RegisterModule(demo.Module())

	// Boot before registering ad-hoc routes so the demo's components exist.
	if err := application.Boot(); err != nil {
		return err
	}

	application.Router().Get("/", func(w http.ResponseWriter, r *http.Request) {
		root := container.MustResolve[*demo.DemoApp](application.Engine(), demo.TokenRoot)
		armhttp.NewResponse(w).Success(map[string]any{"motd": root.MOTD()})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}
