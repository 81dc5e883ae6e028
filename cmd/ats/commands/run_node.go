package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"

	"github.com/tendermint/ats/abci"
	"github.com/tendermint/ats/contract"
	"github.com/tendermint/ats/libs/log"
	"github.com/tendermint/ats/sink/psql"
)

const maxOpenConnections = 3

// AddNodeFlags exposes some common configuration options on the command-line
// These are exposed for convenience of commands embedding an ATS node
func AddNodeFlags(cmd *cobra.Command) {
	// abci flags
	cmd.Flags().String("abci.laddr", config.ABCI.ListenAddress, "ABCI listen address. Port required")
	cmd.Flags().String("abci.transport", config.ABCI.Transport, "Specify abci transport (socket | grpc)")
	cmd.Flags().String("abci.contract_address", config.ABCI.ContractAddress, "Account holding escrowed funds")
	cmd.Flags().String("abci.migrate_admin", config.ABCI.MigrateAdmin, "The only sender allowed to submit migrate txs")

	// instrumentation flags
	cmd.Flags().Bool("instrumentation.prometheus", config.Instrumentation.Prometheus, "Serve Prometheus metrics")
	cmd.Flags().String(
		"instrumentation.prometheus_listen_addr",
		config.Instrumentation.PrometheusListenAddr,
		"Address to listen for Prometheus collector(s) connections")

	// sink flags
	cmd.Flags().String("psql.conn", config.PSQL.Conn, "PostgreSQL connection string for the event sink")
}

// StartCmd serves the market to a consensus engine over ABCI.
var StartCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"node", "run"},
	Short:   "Run the ATS ABCI application",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startNode(ctx)
	},
}

func init() {
	AddNodeFlags(StartCmd)
}

func startNode(ctx context.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := contract.NopMetrics()
	if config.Instrumentation.Prometheus {
		metrics = contract.PrometheusMetrics(config.Instrumentation.Namespace, "chain_id", config.ChainID)
	}

	var opts []abci.Option
	if config.PSQL.Enabled() {
		sink, err := psql.NewEventSink(config.PSQL.Conn, config.ChainID)
		if err != nil {
			return fmt.Errorf("create event sink: %w", err)
		}
		defer sink.Stop()
		if err := sink.Migrate(); err != nil {
			return fmt.Errorf("migrate event sink schema: %w", err)
		}
		opts = append(opts, abci.WithEventSink(sink))
		logger.Info("Indexing committed transitions to PostgreSQL", "table", psql.TableEvents)
	}

	app, err := newApplication(newContract(db, metrics), opts...)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(config.ABCI.ListenAddress, config.ABCI.Transport, app)
	if err != nil {
		return err
	}
	srv.SetLogger(tmLogger{logger.With("module", "abci-server")})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start abci server: %w", err)
		}
		logger.Info("Started ABCI server",
			"laddr", config.ABCI.ListenAddress,
			"transport", config.ABCI.Transport,
			"height", app.State().Height)

		select {
		case <-ctx.Done():
		case <-srv.Quit():
		}
		if srv.IsRunning() {
			return srv.Stop()
		}
		return nil
	})

	if config.Instrumentation.Prometheus {
		promSrv := startPrometheusServer(g, config.Instrumentation.PrometheusListenAddr)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return promSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("Stopped ATS node", "height", app.State().Height)
	return err
}

// startPrometheusServer starts a Prometheus HTTP server, listening for metrics
// collectors on addr.
func startPrometheusServer(g *errgroup.Group, addr string) *http.Server {
	srv := &http.Server{
		Addr: addr,
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{MaxRequestsInFlight: maxOpenConnections},
			),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("Serving Prometheus metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("prometheus HTTP server: %w", err)
		}
		return nil
	})
	return srv
}

// tmLogger lets the ABCI server log through the node's logger.
type tmLogger struct {
	log.Logger
}

var _ tmlog.Logger = tmLogger{}

func (l tmLogger) With(keyvals ...interface{}) tmlog.Logger {
	return tmLogger{l.Logger.With(keyvals...)}
}
