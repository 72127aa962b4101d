package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/gwillem/tourguide/pkg/robot"
)

type RouteCommand struct {
	From int `long:"from" default:"0" description:"Start waypoint"`
	Args struct {
		To []string `positional-arg-name:"to" description:"Destination waypoint(s); each leg starts where the last one ended"`
	} `positional-args:"yes" required:"yes"`
}

func (c *RouteCommand) Execute(args []string) error {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		return err
	}
	resolver := cfg.Routes.Resolver()
	n := len(cfg.Tour.Waypoints)

	if c.From < 0 || c.From >= n {
		return errors.Errorf("--from %d: no such waypoint", c.From)
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)

	from := c.From
	for _, arg := range c.Args.To {
		to, err := strconv.Atoi(arg)
		if err != nil || to < 0 || to >= n {
			return errors.Errorf("%q: no such waypoint", arg)
		}

		path := resolver.Resolve(from, to)
		fmt.Printf("%s → %s\n", cfg.Tour.Waypoints[from].Name, cfg.Tour.Waypoints[to].Name)
		if len(path) == 0 {
			return errors.Errorf("no route from %d to %d", from, to)
		}

		rows := make([][]string, 0, len(path))
		for step, idx := range path {
			w := cfg.Tour.Waypoints[idx]
			rows = append(rows, []string{
				fmt.Sprintf("%d", step),
				fmt.Sprintf("%d", idx),
				w.Name,
				fmt.Sprintf("%.2f, %.2f", w.Position.X, w.Position.Y),
				w.Heading.String(),
			})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers("Step", "#", "Name", "Position", "Heading").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return tableHeaderStyle
				}
				return cellStyle
			})
		fmt.Println(t.Render())
		from = to
	}
	return nil
}

type InitCommand struct {
	Force bool `short:"f" long:"force" description:"Overwrite an existing configuration file"`
}

func (c *InitCommand) Execute(args []string) error {
	if robot.ConfigExists(opts.Config) && !c.Force {
		return errors.Errorf("%s already exists (use --force to overwrite)", opts.Config)
	}
	if err := robot.DefaultConfig().SaveTo(opts.Config); err != nil {
		return errors.Wrapf(err, "write %s", opts.Config)
	}
	fmt.Printf("Configuration written to %s\n", opts.Config)
	return nil
}
