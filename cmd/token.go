package cmd

import (
	"fmt"

	"Articulate/core/auth"

	"github.com/spf13/cobra"
)

var (
	tokenEmail   string
	tokenSubject string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发访问令牌",
	Long:  `为白名单中的邮箱签发 HS256 访问令牌，subject 即数据归属的 owner id。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, auth.NewAllowlist(cfg.AllowedEmails))
		tok, err := tokens.Issue(tokenSubject, tokenEmail)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "令牌中的邮箱，必须在 ALLOWED_EMAILS 中")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "owner id")
	_ = tokenCmd.MarkFlagRequired("email")
	_ = tokenCmd.MarkFlagRequired("subject")

	tokenCmd.Example = `  articulate token --email me@example.com --subject 2f0c7c1e-owner`
}
