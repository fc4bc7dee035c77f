package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/mq"
)

type services struct {
	catalog catalog.Service
	loans   loan.Service
	users   user.Service
}

func (e *env) services() (*services, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	users, err := e.users()
	if err != nil {
		return nil, err
	}
	catalogService := catalog.NewService(mysql.NewGenreRepository(db), mysql.NewAuthorRepository(db), mysql.NewBookRepository(db), cfg.Catalog.PageSize)
	return &services{
		catalog: catalogService,
		loans:   loan.NewService(mysql.NewInstanceRepository(db), catalogService, users, cfg.Catalog.PageSize),
		users:   users,
	}, nil
}

// operator resolves the account a command acts as.
func operator(ctx context.Context, users user.Service, username string) (access.Principal, error) {
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		return access.Principal{}, fmt.Errorf("operator %q: %w", username, err)
	}
	return access.Principal{UserID: u.ID, Username: u.Username, Staff: u.IsStaff}, nil
}

func instancesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instances",
		Short: "manage book copies",
	}
	cmd.AddCommand(instancesAddCommand(e))
	return cmd
}

func instancesAddCommand(e *env) *cobra.Command {
	var (
		as  string
		req apploan.StockRequest
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "register a delivery of copies of one book in a single transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			svc, err := e.services()
			if err != nil {
				return err
			}
			p, err := operator(cmd.Context(), svc.users, as)
			if err != nil {
				return err
			}
			db, err := e.database()
			if err != nil {
				return err
			}
			client, err := e.redisClient()
			if err != nil {
				return err
			}

			var events apploan.EventPublisher
			if cfg.MQ.Enabled {
				pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType)
				if err != nil {
					return err
				}
				defer pub.Close()
				events = messaging.NewLoanEventPublisher(pub)
			}
			summary := redis.NewJSONCache(client, redis.SummaryKey, cfg.Cache.SummaryTTL)

			uc := apploan.NewStockUseCase(svc.loans, svc.catalog, mysql.NewTxManager(db), events, summary)
			views, err := uc.Execute(cmd.Context(), p, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(e.out)
			for _, v := range views {
				if err := enc.Encode(v); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "staff username the copies are registered by")
	cmd.Flags().UintVar(&req.BookID, "book", 0, "book id")
	cmd.Flags().IntVarP(&req.Count, "count", "n", 1, "number of copies")
	cmd.Flags().StringVar(&req.Status, "status", "", "initial status (default available)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("book")
	return cmd
}
