package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sumo-chaos/sumo-chaos/chaos"
	"github.com/sumo-chaos/sumo-chaos/chaos/traci"
)

var (
	// CLI flags for the run command
	sumoCfg      string // SUMO scenario configuration file
	gui          bool   // graphical vs headless engine
	scenarioPath string // optional YAML scenario file
	logLevel     string // log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sumo-chaos",
	Short: "Interactive chaos controller for SUMO traffic simulations",
}

// runCmd launches SUMO and drives the interactive obstruction console
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch SUMO and run the obstruction console",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		logrus.SetFormatter(&easy.Formatter{
			TimestampFormat: "2006-01-02 15:04:05.0000",
			LogFormat:       "[%time%] [%lvl%] %msg%\n",
		})
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("scenario config: %v", err)
		}
		if cmd.Flags().Changed("sumocfg") {
			scenario.SumoCfg = sumoCfg
		}
		if cmd.Flags().Changed("gui") {
			scenario.GUI = gui
		}

		ctrl := chaos.NewController(traci.NewClient(), scenario.EffectsTable())
		if err := ctrl.Start(scenario.SumoCfg, scenario.GUI); err != nil {
			logrus.Fatalf("start: %v", err)
		}
		defer func() {
			if err := ctrl.Stop(); err != nil {
				logrus.Errorf("shutdown: %v", err)
			}
			fmt.Println("Simulation ended")
		}()

		// An interrupt while the loop is blocked on stdin still gets
		// the engine shut down before exiting.
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigc
			fmt.Println()
			if err := ctrl.Stop(); err != nil {
				logrus.Errorf("shutdown: %v", err)
			}
			os.Exit(0)
		}()

		repl := &chaos.REPL{Controller: ctrl, In: os.Stdin, Out: os.Stdout}
		if err := repl.Run(); err != nil {
			logrus.Errorf("console: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&sumoCfg, "sumocfg", "intersection.sumocfg", "SUMO scenario configuration file")
	runCmd.Flags().BoolVar(&gui, "gui", true, "Run sumo-gui instead of headless sumo")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file overriding defaults")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
}
