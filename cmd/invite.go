package cmd

import (
	"context"
	"log"

	"github.com/amit1797/Eduadmin-sub000/internal/user"
	userPostgres "github.com/amit1797/Eduadmin-sub000/internal/user/postgres"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite management commands",
	Long:  `Manage invites: reissue the set-password token of a pending account`,
}

var reissueInviteCmd = &cobra.Command{
	Use:   "reissue [email]",
	Short: "Mint a fresh invite token for a pending account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reissueInvite(args[0])
	},
}

func reissueInvite(email string) {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)

	st, err := openStores(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer func() { _ = st.Close() }()

	users := user.NewService(userPostgres.NewRepository(st.gorm, st.sqlx), newTokenService(cfg.Security), logger.LoggerWrapper())
	invite, err := users.ReissueInvite(ctx, email)
	if err != nil {
		log.Fatalf("failed to reissue invite: %v", err)
	}
	printInvite(invite)
}

func init() {
	inviteCmd.AddCommand(reissueInviteCmd)
}
