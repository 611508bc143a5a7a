package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/infrastructure/persistence/postgres"
	"repurpose-ai-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	if err := dataLayer.PgClient.AutoMigrate(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Schema migration completed.")

	// 4. 创建演示用户（凭证由外部身份服务下发，这里仅落库）
	demoEmail := os.Getenv("BOOTSTRAP_USER_EMAIL")
	if demoEmail == "" {
		demoEmail = "demo@repurpose.ai"
	}

	userRepo := postgres.NewUserRepository(dataLayer.PgClient)
	existing, err := userRepo.GetByEmail(ctx, demoEmail)
	if err != nil {
		log.Fatalf("failed to check user existence: %v", err)
	}

	if existing == nil {
		fmt.Printf("Creating demo user: %s...\n", demoEmail)
		user := &entity.User{
			Email: demoEmail,
			Name:  "Demo User",
			Role:  entity.RoleUser,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to create demo user: %v", err)
		}
		fmt.Printf("Demo user created with ID: %s\n", user.ID)
	} else {
		fmt.Printf("Demo user %s already exists with ID: %s\n", demoEmail, existing.ID)
	}

	fmt.Println("Bootstrap completed successfully.")
}
