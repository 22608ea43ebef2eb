package main

import "auraleen/internal/app"

// @title           AURALEEN Storefront API
// @version         1.0
// @description     Account, session and COD order API for the AURALEEN fabric storefront.
// @BasePath        /
func main() {
	app.Run()
}
