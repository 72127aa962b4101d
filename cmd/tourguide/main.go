package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config string `short:"c" long:"config" env:"TOURGUIDE_CONFIG" default:"tourguide.json" description:"Configuration file"`

	Run   RunCommand   `command:"run" description:"Run the tour guide on the simulated body"`
	Route RouteCommand `command:"route" description:"Print the planned route between two waypoints"`
	Init  InitCommand  `command:"init" description:"Write the default configuration file"`
	Setup SetupCommand `command:"setup" description:"Find and calibrate the show arm"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Tour guide - exhibit navigation for a biped robot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
