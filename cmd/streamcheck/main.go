package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/capatazlib/go-streamexpect/expect"
	"github.com/capatazlib/go-streamexpect/stest"
)

func main() {
	app := newApp()
	app.Run(os.Args)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "streamcheck"
	app.Usage = "run stream expectation scenarios and verify their outcomes"
	app.Commands = []*cli.Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "list the available scenarios",
			Action:  list,
		},
		{
			Name:   "run",
			Usage:  "run scenarios (all of them unless --scenario is given)",
			Action: run,
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "timeout",
					Value: 1 * time.Second,
					Usage: "how long to wait for the expectations of each scenario",
				},
				&cli.StringSliceFlag{
					Name:    "scenario",
					Aliases: []string{"s"},
					Usage:   "name of a scenario to run, may be repeated",
				},
				&cli.BoolFlag{
					Name:  "metrics",
					Usage: "print the prometheus metrics of the run",
				},
			},
		},
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "logrus level (debug shows every chain event)",
			EnvVars: []string{"STREAMCHECK_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "log format, text or json",
		},
	}
	return app
}

func list(c *cli.Context) error {
	for _, sc := range scenarios() {
		fmt.Fprintf(c.App.Writer, "%-22s %s\n", sc.name, sc.description)
	}
	return nil
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.App.Writer, c.String("log-level"), c.String("format"))
	if err != nil {
		return err
	}

	selected, err := selectScenarios(c.StringSlice("scenario"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	failed := runScenarios(logger, reg, selected, c.Duration("timeout"))

	if c.Bool("metrics") {
		families, err := reg.Gather()
		if err != nil {
			return errorf("failed to gather metrics: %s", err)
		}
		if err := writeFamilies(c.App.Writer, families); err != nil {
			return errorf("failed to write metrics: %s", err)
		}
	}

	if failed > 0 {
		return errorf("%d scenario(s) did not report the expected outcomes", failed)
	}
	return nil
}

// runScenarios executes every scenario and returns how many of them did not
// report the outcomes they should
func runScenarios(
	logger logrus.FieldLogger,
	reg prometheus.Registerer,
	selected []scenario,
	timeout time.Duration,
) int {
	failed := 0
	for _, sc := range selected {
		scLogger := logger.WithField("scenario", sc.name)

		report := expect.ReporterFunc(func(o expect.Outcome) {
			entry := scLogger.WithFields(logrus.Fields{
				"kind":     o.Kind.String(),
				"status":   o.Status.String(),
				"location": o.Location.String(),
			})
			if o.Err != nil {
				entry = entry.WithError(o.Err)
			}
			entry.Info("outcome reported")
		})

		opts := []expect.Opt{
			expect.WithName(sc.name),
			expect.WithLogger(scLogger),
			expect.WithRegisterer(reg),
		}

		outcomes := sc.run(report, opts, timeout)

		if err := stest.VerifyExactMatch(sc.want, outcomes); err != nil {
			failed++
			scLogger.WithError(err).Error("scenario did not behave as expected")
			continue
		}
		scLogger.Info("scenario behaved as expected")
	}
	return failed
}

func newLogger(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errorf("invalid log level: %s", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return nil, errorf("invalid log format %q (text or json)", format)
	}
	return logger, nil
}

// writeFamilies renders the gathered metrics with the prometheus text format
func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func errorf(m string, args ...interface{}) error {
	return cli.Exit(fmt.Sprintf(m, args...), 1)
}
