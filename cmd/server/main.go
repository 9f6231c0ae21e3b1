package main

import (
	"log"

	"crash-platform/internal/app"
)

func main() {
	server := app.NewServer()
	log.Fatal(server.Start())
}
