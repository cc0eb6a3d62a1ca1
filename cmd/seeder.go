package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	accessPostgres "github.com/amit1797/Eduadmin-sub000/internal/access/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/auth"
	"github.com/amit1797/Eduadmin-sub000/internal/core/identity"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
	userPostgres "github.com/amit1797/Eduadmin-sub000/internal/user/postgres"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	superAdminEmail     string
	superAdminFirstName string
	superAdminLastName  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the role permission matrix and the first super admin",
	Long: `Write the default role permission matrix to role_permissions, replacing
whatever is there, and invite a super admin when --email is given.`,
	Run: func(cmd *cobra.Command, args []string) {
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

		perRole, err := access.Seed(ctx, accessPostgres.NewRolePermissionRepository(st.gorm), access.DefaultMatrix)
		if err != nil {
			log.Fatalf("failed to seed role permissions: %v", err)
		}
		fmt.Printf("Seeded %d role permissions\n", access.DefaultMatrix.Len())
		for _, role := range identity.Roles() {
			if n := perRole[role]; n > 0 {
				fmt.Printf("  %-18s %d\n", role, n)
			}
		}

		if superAdminEmail == "" {
			return
		}

		tokens := newTokenService(cfg.Security)
		users := user.NewService(userPostgres.NewRepository(st.gorm, st.sqlx), tokens, logger.LoggerWrapper())
		invite, err := users.InviteSuperAdmin(ctx, superAdminEmail, superAdminFirstName, superAdminLastName)
		if errors.Is(err, user.ErrEmailTaken) {
			fmt.Println("super admin already exists:", superAdminEmail)
			return
		}
		if err != nil {
			log.Fatalf("failed to invite super admin: %v", err)
		}
		printInvite(invite)
	},
}

func newTokenService(cfg internal.SecurityConfig) *auth.TokenService {
	return auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenDuration,
		RefreshTTL:    cfg.RefreshTokenDuration,
		InviteTTL:     cfg.InviteTokenDuration,
		Issuer:        cfg.Issuer,
	})
}

func printInvite(invite *user.InviteResponse) {
	fmt.Println("Invited:", invite.User.Email, "as", invite.User.Role)
	fmt.Println("Invite token (expires", invite.ExpiresAt.Format("2006-01-02 15:04 MST")+"):")
	fmt.Println(invite.InviteToken)
}

func init() {
	seedCmd.Flags().StringVar(&superAdminEmail, "email", "", "super admin email to invite")
	seedCmd.Flags().StringVar(&superAdminFirstName, "first-name", "Platform", "super admin first name")
	seedCmd.Flags().StringVar(&superAdminLastName, "last-name", "Admin", "super admin last name")
}
