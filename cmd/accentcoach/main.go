package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal/cli"
	"codeberg.org/snonux/accentcoach/internal/logging"
	"codeberg.org/snonux/accentcoach/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		logging.Init(viper.GetString("log.level"), viper.GetBool("log.pretty"))
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), args, flags)
	}
	rootCmd.AddCommand(cli.CreateServeCommand(flags, func(cmd *cobra.Command) error {
		return withProcessor(flags, func(proc *processor.Processor) error {
			return proc.RunServer(cmd.Context())
		})
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, args []string, flags *cli.Flags) error {
	return withProcessor(flags, func(proc *processor.Processor) error {
		// Handle --list-models flag
		if flags.ListModels {
			return proc.ListModels(ctx)
		}

		if flags.BatchFile != "" {
			return proc.ProcessBatch(ctx)
		}
		if len(args) > 0 {
			if err := proc.ProcessSingleText(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("\nDone!")
			return nil
		}

		// No input provided - launch GUI mode by default
		return proc.RunGUIMode(ctx)
	})
}

// withProcessor runs fn and releases the processor afterwards
func withProcessor(flags *cli.Flags, fn func(proc *processor.Processor) error) error {
	proc := processor.NewProcessor(flags)
	defer func() {
		if err := proc.Close(); err != nil {
			log.Warn().Err(err).Msg("closing response cache")
		}
	}()
	return fn(proc)
}
