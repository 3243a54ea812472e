package main

import (
	"os"

	"github.com/kumuluz/go-jwt-auth/cmd/jwtauth/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
