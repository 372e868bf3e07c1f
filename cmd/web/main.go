package main

import "bazaar_backend/internal/app"

func main() {
	app.Run()
}
