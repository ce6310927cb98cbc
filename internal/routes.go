package internal

import (
	"net/http"
	"rucd/internal/controllers"
	"rucd/internal/providers"
	"rucd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/vehicles", http.HandlerFunc(apiController.ListVehicles))
	routers.Post("/vehicles", http.HandlerFunc(apiController.AddVehicle))
	routers.Get("/vehicle", http.HandlerFunc(apiController.GetVehicle))
	routers.Post("/vehicle/update", http.HandlerFunc(apiController.UpdateVehicle))
	routers.Post("/vehicle/delete", http.HandlerFunc(apiController.DeleteVehicle))
	routers.Post("/entries", http.HandlerFunc(apiController.AddEntry))
	routers.Post("/entries/delete", http.HandlerFunc(apiController.DeleteEntry))
	routers.Post("/expiry/extend", http.HandlerFunc(apiController.ExtendDistanceExpiry))
	routers.Get("/attention", http.HandlerFunc(apiController.GetAttention))
	routers.Get("/reminders", http.HandlerFunc(apiController.GetReminders))
	return routers
}
