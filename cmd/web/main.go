// @title           Placement Portal API
// @version         1.0
// @description     API портала стажировок: вакансии, заявки студентов, модерация.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "placement_backend/docs"
	"placement_backend/internal/app"
)

func main() {
	app.Run()
}
