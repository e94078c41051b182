package internal

import (
	"net/http"

	"sessionstate/internal/controllers"
	"sessionstate/internal/providers"
)

func InitRoutes(stateController *controllers.StateController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/state", http.HandlerFunc(stateController.GetState))
	routers.Put("/state", http.HandlerFunc(stateController.PutState))
	routers.Get("/profile", http.HandlerFunc(stateController.GetProfile))
	routers.Delete("/auth", http.HandlerFunc(stateController.SignOut))
	routers.Get("/quarantine", http.HandlerFunc(stateController.GetQuarantine))
	return routers
}
