package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/middleware"
	"supa-casino-backend/internal/services"
)

// RouterDeps bundles everything the route table needs.
type RouterDeps struct {
	Auth       *services.AuthService
	AuthH      *AuthHandler
	BalanceH   *BalanceHandler
	GameH      *GameHandler
	Hub        *Hub
	CookieName string
	Log        *logrus.Logger
}

// NewRouter assembles the engine with the full middleware chain and route
// table. Tests build the same engine the server runs.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.Use(middleware.SessionContext(deps.Auth, deps.CookieName))

	limiter := middleware.NewRateLimiter()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", deps.AuthH.Register)
			auth.POST("/login", deps.AuthH.Login)
			auth.POST("/logout", deps.AuthH.Logout)
			auth.GET("/me", deps.AuthH.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())
		protected.Use(limiter.Limit())
		{
			protected.GET("/balance", deps.BalanceH.Get)
			protected.POST("/balance/update", deps.BalanceH.Update)
			protected.POST("/balance/reset", deps.BalanceH.Reset)
			protected.GET("/balance/withdrawal-addresses", deps.BalanceH.WithdrawalAddresses)
			protected.POST("/balance/withdrawal-address", deps.BalanceH.SetWithdrawalAddress)

			games := protected.Group("/games")
			{
				games.POST("/play", deps.GameH.RecordPlay)
				games.GET("/history", deps.GameH.History)
				games.POST("/slots", deps.GameH.PlaySlots)
				games.POST("/dice", deps.GameH.PlayDice)
				games.POST("/roulette", deps.GameH.PlayRoulette)
				games.POST("/coinflip", deps.GameH.PlayCoinFlip)
				games.POST("/wheel", deps.GameH.PlayWheel)
				games.POST("/blackjack/deal", deps.GameH.BlackjackDeal)
				games.POST("/blackjack/hit", deps.GameH.BlackjackHit)
				games.POST("/blackjack/stand", deps.GameH.BlackjackStand)
			}

			protected.GET("/ws", deps.Hub.Handle)
		}
	}

	return r
}
