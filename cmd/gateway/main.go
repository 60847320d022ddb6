package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tokenforge/asset-gateway/pkg/app"
	"github.com/tokenforge/asset-gateway/pkg/app/api"
	"github.com/tokenforge/asset-gateway/pkg/config"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = api.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Gateway exited with error: %v\n", err)
		os.Exit(1)
	}
}
