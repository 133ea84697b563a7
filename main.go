// Package main is the entry point for the nagare application.
package main

import (
	"github.com/nagare-player/nagare/cmd"
	"github.com/nagare-player/nagare/config"
	"github.com/nagare-player/nagare/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
