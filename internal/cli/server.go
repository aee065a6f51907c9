package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goDEXd/internal/node"
)

var (
	// Server flags
	port     int
	bindAddr string
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the exchange daemon",
	Long: `Start goDEXd: open the state store and withdrawal journal, restore the
last snapshot and serve the dex_* JSON-RPC methods until interrupted.

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = serverCmd.RunE

	// Server-specific flags override the config file
	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if bindAddr != "" {
		cfg.Server.IP = bindAddr
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer n.Close()

	if !quiet {
		fmt.Printf("goDEXd listening on http://%s:%d/\n", cfg.Server.IP, cfg.Server.Port)
	}

	return n.Run(ctx)
}
