package main

import (
	"log"

	"github.com/joho/godotenv"

	"chronos/internal/app/server"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if err := server.Run(); err != nil {
		log.Fatalf("chronos: %v", err)
	}
}
