// Command sitebot runs the storefront bot that sells, packages and deploys
// website templates.
package main

import (
	"log"

	corecmd "github.com/m3rciful/sitebot/core/cmd"
	"github.com/m3rciful/sitebot/internal/app"
	"github.com/m3rciful/sitebot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
