// Command mangavault is the CLI entry point: authenticate against a
// vendor, browse its catalog, preview a purchase's cost, run the
// purchase/download batch loop, or start the status/control HTTP surface
// as a long-running process.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mangavault/internal/account"
	"mangavault/internal/analytics"
	"mangavault/internal/batch"
	"mangavault/internal/config"
	"mangavault/internal/dispatch"
	"mangavault/internal/ledger"
	"mangavault/internal/status"
	"mangavault/pkg/broker/nats/jetstream"
	"mangavault/pkg/broker/rabbitmq"
	"mangavault/pkg/log"
	serverpkg "mangavault/pkg/server"
	"mangavault/pkg/server/response"
	"mangavault/pkg/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mangavault",
		Short: "multi-vendor manga purchase and download client",
	}

	root.AddCommand(newLoginCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newPrecalculateCmd())
	root.AddCommand(newPurchaseCmd())
	root.AddCommand(newServeCmd())

	return root
}

func newLoginCmd() *cobra.Command {
	var vendor, device, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "authenticate against a vendor and persist the resulting account",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			acc, err := dispatch.Login(cmd.Context(), deps.Store, vendor, device, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in: id=%s vendor=%s email=%s\n", acc.ID, acc.Vendor, acc.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor tag (kaku, inkline)")
	cmd.Flags().StringVar(&device, "device", "", "device tag (kaku only: android, apple, web)")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("vendor")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newCatalogCmd() *cobra.Command {
	var accountID, query string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "list titles visible to a stored account",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			acc, err := account.SelectSingle(cmd.Context(), deps.Store, "", accountID)
			if err != nil {
				return err
			}

			titles, err := dispatch.Catalog(cmd.Context(), deps.Store, acc, query)
			if err != nil {
				return err
			}
			for _, t := range titles {
				fmt.Printf("%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Language, t.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (omit if only one account is stored)")
	cmd.Flags().StringVar(&query, "query", "", "search query")

	return cmd
}

func newPrecalculateCmd() *cobra.Command {
	var accountID, titleID, chapters string

	cmd := &cobra.Command{
		Use:   "precalculate",
		Short: "preview the cost of purchasing a set of chapters without claiming them",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			acc, err := account.SelectSingle(cmd.Context(), deps.Store, "", accountID)
			if err != nil {
				return err
			}

			plans, err := dispatch.Precalculate(cmd.Context(), deps.Store, acc, titleID, splitChapters(chapters))
			if err != nil {
				return err
			}
			for _, p := range plans {
				fmt.Printf("purchasable=%v remaining_bonus=%d remaining_product=%d remaining_premium=%d remaining_point=%d\n",
					p.Purchasable, p.Remaining.Bonus, p.Remaining.Product, p.Remaining.Premium, p.Remaining.Point)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (omit if only one account is stored)")
	cmd.Flags().StringVar(&titleID, "title", "", "title id")
	cmd.Flags().StringVar(&chapters, "chapters", "", "comma-separated chapter ids (omit for all)")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newPurchaseCmd() *cobra.Command {
	var accountID, titleID, chapters string

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "purchase and download a set of chapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			acc, err := account.SelectSingle(cmd.Context(), deps.Store, "", accountID)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), deps.Config.APP.VendorTimeout*10)
			defer cancel()

			summary, err := dispatch.PurchaseAndDownload(ctx, deps.batchDeps(acc), deps.Store, acc, titleID, splitChapters(chapters))
			if err != nil {
				return err
			}
			fmt.Printf("claimed=%d failed=%d total_cost=%s\n", summary.ClaimedTotal, len(summary.Failed), summary.TotalCost.String())
			for _, f := range summary.Failed {
				fmt.Printf("  failed %s: %s\n", f.ItemID, f.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (omit if only one account is stored)")
	cmd.Flags().StringVar(&titleID, "title", "", "title id")
	cmd.Flags().StringVar(&chapters, "chapters", "", "comma-separated chapter ids (omit for all)")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the status/control HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			handler := status.Handler(status.Deps{
				Store:             deps.Store,
				Events:            toEventPublisher(deps.events),
				Metrics:           deps.metrics,
				Logger:            deps.Logger,
				VendorHTTPTimeout: deps.Config.APP.VendorTimeout,
				LedgerPool:        deps.ledgerPoolOrNil(),
				ClickHouseDB:      deps.clickhouseDBOrNil(),
				Backends: response.Backends{
					Ledger:    deps.ledgerPoolOrNil(),
					Analytics: deps.clickhouseDBOrNil(),
					Cache:     deps.redisConn,
				},
			})

			srv, err := serverpkg.New(serverpkg.WithHTTPServer(handler, strings.TrimPrefix(deps.Config.Status.Port, ":")))
			if err != nil {
				return err
			}
			if err := srv.Run(deps.Logger); err != nil {
				return err
			}

			deps.Logger.Info("status server listening", zap.String("port", deps.Config.Status.Port))

			sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-sigCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	return cmd
}

func splitChapters(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cliDeps bundles every optional backend the CLI may have wired up,
// resolved once per invocation from config.Configs.
type cliDeps struct {
	Config *config.Configs
	Logger *zap.Logger
	Store  account.Store

	events         *jetstream.Publisher
	metrics        *batch.Metrics
	clickhouseConn *store.ClickHouse
	ledgerPool     *ledger.Ledger
	ledgerStore    *store.SQL
	redisStore     *store.Redis
	redisConn      *redis.Client
	broker         *rabbitmq.RabbitMQ
	js             *jetstream.JetStream
}

// batchDeps fans a batch run's per-attempt records out to whichever of
// the ClickHouse sink / Postgres ledger are configured, scoped to acc's
// own vendor (built fresh per call rather than cached, since a cached
// sink would bake in whichever vendor happened to run first).
func (d cliDeps) batchDeps(acc account.Account) batch.Deps {
	var fanout batch.FanoutSink
	if d.clickhouseConn != nil {
		fanout = append(fanout, analytics.New(d.clickhouseConn.Connection, acc.Vendor))
	}
	if d.ledgerPool != nil {
		fanout = append(fanout, ledger.NewAccountSink(d.ledgerPool, acc.ID, acc.Vendor))
	}

	return batch.Deps{
		Events:    toEventPublisher(d.events),
		Analytics: fanout,
		Metrics:   d.metrics,
		Vendor:    acc.Vendor,
		Logger:    d.Logger,
	}
}

// toEventPublisher guards against the classic typed-nil interface trap: a
// nil *jetstream.Publisher assigned directly to an interface field is a
// non-nil interface, so batch's own nil check (d.Events == nil) would
// never trip and it would instead panic on first use.
func toEventPublisher(p *jetstream.Publisher) batch.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func (d cliDeps) ledgerPoolOrNil() *pgxpool.Pool {
	if d.ledgerStore == nil {
		return nil
	}
	return d.ledgerStore.Connection
}

func (d cliDeps) clickhouseDBOrNil() *sql.DB {
	if d.clickhouseConn == nil {
		return nil
	}
	return d.clickhouseConn.Connection
}

func (d cliDeps) Close() {
	if d.js != nil {
		d.js.Close()
	}
	if d.broker != nil {
		d.broker.Close()
	}
	if d.redisStore != nil && d.redisStore.Connection != nil {
		d.redisStore.Connection.Close()
	}
	if d.ledgerStore != nil && d.ledgerStore.Connection != nil {
		d.ledgerStore.Connection.Close()
	}
	if d.clickhouseConn != nil {
		d.clickhouseConn.Close()
	}
}

func newCLIDeps() (*cliDeps, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger()
	if err != nil {
		return nil, err
	}

	fileStore := account.NewFileStore(cfg.APP.ConfigRoot)
	var baseStore account.Store = fileStore

	if cfg.Mongo.Enabled {
		mongoStore, mErr := store.NewMongo(cfg.Mongo.URI)
		if mErr != nil {
			return nil, mErr
		}
		baseStore = account.NewMongoStore(mongoStore.Client, "mangavault", "accounts")
	}

	deps := &cliDeps{Config: cfg, Logger: logger}

	if cfg.RabbitMQ.EnablePublish {
		broker, bErr := rabbitmq.NewRabbitMQ(cfg.RabbitMQ.URL)
		if bErr != nil {
			return nil, bErr
		}
		deps.broker = broker
		baseStore = account.NewAuditingStore(baseStore, account.NewAuditPublisher(broker, cfg.RabbitMQ.Exchange))
	}
	deps.Store = baseStore

	if cfg.NATS.EnableJetStream {
		js, jErr := jetstream.New(jetstream.Config{
			URL:        cfg.NATS.URL,
			StreamName: cfg.NATS.StreamName,
			Subjects:   []string{cfg.NATS.Subject},
		})
		if jErr != nil {
			return nil, jErr
		}
		deps.js = js
		deps.events = jetstream.NewPublisher(js, logger, "mangavault")
	}

	if cfg.Redis.Enabled {
		redisStore, rErr := store.NewRedis(cfg.Redis.URL)
		if rErr != nil {
			return nil, rErr
		}
		deps.redisStore = &redisStore
		deps.redisConn = redisStore.Connection
	}

	if cfg.Ledger.Enabled {
		sqlStore, sErr := store.NewSQL(cfg.Ledger.DSN)
		if sErr != nil {
			return nil, sErr
		}
		deps.ledgerStore = sqlStore
		deps.ledgerPool = ledger.New(sqlStore.Connection)
	}

	if cfg.ClickHouse.Enabled {
		ch, cErr := store.New(store.ClickHouseConfig{
			Addr:     cfg.ClickHouse.Addr,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		})
		if cErr != nil {
			return nil, cErr
		}
		deps.clickhouseConn = ch
	}

	deps.metrics = batch.NewMetrics(prometheus.DefaultRegisterer)

	return deps, nil
}
