package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"sales_desk/api"
	"sales_desk/internal/config"
)

func main() {
	cfg := config.Load()

	r := gin.Default()
	if err := api.InitRoutes(r, cfg); err != nil {
		panic(fmt.Errorf("error wiring routes: %v", err))
	}

	if err := r.Run(cfg.Addr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
