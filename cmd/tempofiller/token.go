package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/tempofiller/internal/api/dto"
	"github.com/spec-kit/tempofiller/internal/auth"
	"github.com/spec-kit/tempofiller/internal/config"
	"github.com/spec-kit/tempofiller/internal/domain"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		kind    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP tool API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET environment variable is required")
			}
			subjectType, err := parseSubjectType(kind)
			if err != nil {
				return err
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(subject, subjectType)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.AuthResponse{
				Subject:   subject,
				Kind:      string(subjectType),
				Token:     token,
				ExpiresAt: expiresAt,
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Name of the caller the token is issued to.")
	cmd.Flags().StringVar(&kind, "kind", "agent", "Caller kind: agent or operator.")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func parseSubjectType(kind string) (domain.SubjectType, error) {
	switch domain.SubjectType(strings.ToUpper(kind)) {
	case domain.SubjectTypeAgent:
		return domain.SubjectTypeAgent, nil
	case domain.SubjectTypeOperator:
		return domain.SubjectTypeOperator, nil
	}
	return "", fmt.Errorf("unknown kind %q, expected agent or operator", kind)
}
