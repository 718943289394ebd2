package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harrison/pbar/internal/bar"
	"github.com/harrison/pbar/internal/config"
)

// NewDemoCommand creates the demo command
func NewDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a simulated task behind a progress bar",
		Long: `Run a simulated task of --total units, sleeping --delay per unit and
logging every --log-every units. The log lines are held back while the bar
is drawn and printed once it completes.

Configuration is loaded from .pbar/config.yaml if present; flags win.`,
		Args: cobra.NoArgs,
		RunE: runDemo,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .pbar/config.yaml)")
	cmd.Flags().String("total", "100", "Number of work units")
	cmd.Flags().Duration("delay", 50*time.Millisecond, "Simulated work per unit")
	cmd.Flags().Int("log-every", 10, "Log a line every N units (0 = never)")
	cmd.Flags().Int("stop-at", 0, "End the bar early after N units (0 = run to completion)")
	cmd.Flags().String("message", "", "Message shown left of the bar")
	cmd.Flags().String("marker", "", "Fill symbol")
	cmd.Flags().String("suffix", "", "Suffix template ({idx}, {tot}, {progress}, {time})")
	cmd.Flags().Int("width", 0, "Bar width (max 100)")
	cmd.Flags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	return cmd
}

func runDemo(cmd *cobra.Command, args []string) (err error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.MergeWithFlags(
		changedString(cmd, "message"),
		changedString(cmd, "marker"),
		changedString(cmd, "suffix"),
		changedInt(cmd, "width"),
		changedString(cmd, "log-level"),
	)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, cleanup, err := setupLogging(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	if !writerIsTerminal(out) {
		l.Warn("output is not a terminal; the bar will be drawn as carriage-return separated updates")
	}

	total, _ := cmd.Flags().GetString("total")
	delay, _ := cmd.Flags().GetDuration("delay")
	logEvery, _ := cmd.Flags().GetInt("log-every")
	stopAt, _ := cmd.Flags().GetInt("stop-at")

	b, err := bar.FromValue(total, bar.FromConfig(cfg.Bar), bar.WithOutput(out), bar.WithRegistry(l))
	if err != nil {
		return err
	}
	defer func() {
		if endErr := b.End(); err == nil {
			err = endErr
		}
	}()

	for i := 1; i <= b.Total(); i++ {
		if err := b.Step(); err != nil {
			return err
		}
		time.Sleep(delay)

		if logEvery > 0 && i%logEvery == 0 {
			// Alternate between the logging front ends to show they are all captured.
			switch (i / logEvery) % 3 {
			case 0:
				l.Infof("processed unit %d", i)
			case 1:
				log.Printf("processed unit %d (stdlib log)", i)
			default:
				logrus.Infof("processed unit %d (logrus)", i)
			}
		}
		if stopAt > 0 && i == stopAt {
			l.Warnf("stopping early at unit %d", i)
			return nil
		}
	}

	l.Info("Done!")
	return nil
}

// writerIsTerminal reports whether w is a terminal file.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
