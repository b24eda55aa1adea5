package main

import (
	"time"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/routes"
	"github.com/whpcodes/whpcodes/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Whop{},
		&models.PromoCode{},
		&models.CodeSubmission{},
		&models.BlogPost{},
		&models.Comment{},
		&models.CommentVote{},
		&models.Review{},
		&models.Subscriber{},
		&models.ContactMessage{},
		&models.PageView{},
	)

	r := routes.SetupRouter(db)

	// Mark active codes past their deadline as expired (best-effort)
	utils.StartCodeExpirySweeper(time.Duration(cfg.CodeExpirySweepMinutes) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
