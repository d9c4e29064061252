package main

import (
	"os"

	"coursehub/backend/internal/app"
)

// @title        CourseHub Writing API
// @version      1.0
// @description  Draft autosave, streamed writing feedback and a metered chat relay for course students.
// @host         localhost:8000
// @BasePath     /api
func main() {
	os.Exit(app.Run())
}
