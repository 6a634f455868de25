// Package cli wires the simulation into a single cobra command: a
// positional seed argument plus a --verbose flag, the same shape as
// the original program's single-binary, no-subcommand invocation.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/obelisklab/obelisksim/internal/config"
	"github.com/obelisklab/obelisksim/internal/dashboard"
	"github.com/obelisklab/obelisksim/internal/logging"
	"github.com/obelisklab/obelisksim/pkg/simulation"
)

var rootCmd = &cobra.Command{
	Use:  "obelisksim [seed]",
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

// Execute runs the root command, parsing os.Args.
func Execute() error {
	rootCmd.Flags().BoolP("verbose", "v", false, "increase verbosity")
	if err := viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose")); err != nil {
		return errors.Wrap(err, "binding verbose flag")
	}

	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	seed, err := parseSeed(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(seed)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	sim, err := simulation.New(cfg)
	if err != nil {
		return errors.Wrap(err, "building simulation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := dashboard.New()
	stop := make(chan struct{})
	go sim.Run(stop, dash)

	go func() {
		select {
		case <-waitExit(ctx):
		case <-ctx.Done():
		}
		close(stop)
		dash.Stop()
	}()

	dash.Run()
	return nil
}

// parseSeed returns the positional seed argument if given, or a seed
// taken from the wall clock otherwise.
func parseSeed(args []string) (int64, error) {
	if len(args) == 0 {
		return time.Now().UnixNano(), nil
	}
	seed, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parsing seed argument")
	}
	return seed, nil
}

func waitExit(ctx context.Context) <-chan os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	return sigs
}

func init() {
	cobra.OnInitialize(func() {
		logging.Entry().Debug("cli initialized")
	})
}
