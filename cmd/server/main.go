// Package main implements the entry point for the Feeling API server,
// the backend of the dating platform. It wires configuration, logging,
// the database, and the request authorization pipeline, then serves HTTP.
package main

import (
	"context"
	"log"
)

func main() {
	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
