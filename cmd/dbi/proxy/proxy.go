package proxy

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cozy-creator/dbi/internal/config"
	"github.com/cozy-creator/dbi/internal/server"
	"github.com/cozy-creator/dbi/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the local development proxy in front of the prediction service",
	Long:  "Serve an optional web bundle and forward every request under the proxy prefix to the prediction service with the prefix removed",
	Args:  cobra.NoArgs,
	RunE:  runProxy,
}

func init() {
	flags := Cmd.Flags()

	flags.String("host", config.DefaultProxyHost, "Host to listen on")
	flags.Int("port", config.DefaultProxyPort, "Port to listen on")
	flags.String("prefix", config.DefaultProxyPrefix, "Path prefix that is stripped before forwarding")
	flags.String("target", config.DefaultProductionURL, "Prediction service address requests are forwarded to")
	flags.String("web-dir", "", "Directory with a built web bundle to serve next to the proxy")

	viper.BindPFlag("proxy.host", flags.Lookup("host"))
	viper.BindPFlag("proxy.port", flags.Lookup("port"))
	viper.BindPFlag("proxy.prefix", flags.Lookup("prefix"))
	viper.BindPFlag("proxy.target", flags.Lookup("target"))
	viper.BindPFlag("proxy.web_dir", flags.Lookup("web-dir"))
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	log := logger.GetLogger().Named("proxy")

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("error setting up proxy: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	log.Info("forwarding requests",
		zap.String("addr", srv.Addr()),
		zap.String("prefix", cfg.Proxy.Prefix),
		zap.String("target", cfg.Proxy.Target))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	return srv.Stop(context.Background())
}
