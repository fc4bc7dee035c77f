package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/application/account"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
)

// tokens builds the token use case. Redis is only dialed for revocation.
func (e *env) tokens(withRevoker bool) (*account.TokenUseCase, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	users, err := e.users()
	if err != nil {
		return nil, err
	}
	var revoker account.Revoker
	if withRevoker {
		client, err := e.redisClient()
		if err != nil {
			return nil, err
		}
		revoker = redis.NewSessionStore(client)
	}
	return account.NewTokenUseCase(users, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire), revoker), nil
}

func tokenCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue and revoke API access tokens",
	}
	cmd.AddCommand(tokenIssueCommand(e), tokenRevokeCommand(e))
	return cmd
}

func tokenIssueCommand(e *env) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "sign an access token after checking the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := e.tokens(false)
			if err != nil {
				return err
			}
			tok, err := uc.Issue(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(e.out)
			enc.SetIndent("", "  ")
			return enc.Encode(tok)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func tokenRevokeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke TOKEN",
		Short: "reject a token until it expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := e.tokens(true)
			if err != nil {
				return err
			}
			claims, err := uc.Revoke(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "revoked token %s of %q until %s\n",
				claims.ID, claims.Username, claims.ExpiresAt.Time.Format(time.RFC3339))
			return nil
		},
	}
}
