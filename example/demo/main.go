package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	curator "github.com/pythagorakase/nexus-sub001"
	"github.com/pythagorakase/nexus-sub001/core/resolve"
	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
)

const sampleInstructions = `# Identify locations

Read the current narrative chunk. Cite every known location it references
by id, and suggest locations that are missing from the catalog. Mark the
single place where the scene takes place as the setting.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	c, err := curator.NewCurator(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create curator: %v", err)
	}
	defer c.Close()

	// Seed a small catalog of known locations
	nightCity, err := c.Zones.InsertZone("Night City")
	if err != nil {
		log.Fatalf("Failed to insert zone: %v", err)
	}
	badlands, err := c.Zones.InsertZone("Badlands")
	if err != nil {
		log.Fatalf("Failed to insert zone: %v", err)
	}

	places := []*model.Place{
		{ID: 10, ZoneID: nightCity.ID, Name: "The Afterlife", Summary: "Mercenary bar in the old mortuary."},
		{ID: 11, ZoneID: nightCity.ID, Name: "Lizzie's", Summary: "Braindance club in Kabuki."},
		{ID: 20, ZoneID: badlands.ID, Name: "Sunset Motel", Summary: "Decayed roadside motel off Highway 101."},
	}
	for _, place := range places {
		if err := c.Places.InsertPlace(place); err != nil {
			log.Fatalf("Failed to insert place: %v", err)
		}
	}

	// Seed narrative chunks. In production the narrative store is owned by
	// another system, the curator only reads it.
	if err := c.Chunks.InitNarrative(); err != nil {
		log.Fatalf("Failed to create narrative table: %v", err)
	}

	chunks := []*model.Chunk{
		{
			ID:      1,
			RawText: "Rain hammered the neon over Kabuki while V pushed through the market crowd toward Lizzie's.",
			Metadata: model.Metadata{
				"season": 1, "episode": 1, "scene": 1,
			},
		},
		{
			ID:      2,
			RawText: "Inside, the bass swallowed everything. Judy was waiting in the back booth, two braindance wreaths on the table.",
			Metadata: model.Metadata{
				"season": 1, "episode": 1, "scene": 2,
			},
		},
		{
			ID:      3,
			RawText: "By sunrise they were past the city limits, the Sunset Motel a smudge of dead signage on the horizon.",
			Metadata: model.Metadata{
				"season": 1, "episode": 1, "scene": 3,
			},
		},
	}
	for _, chunk := range chunks {
		if err := c.Chunks.InsertChunk(chunk); err != nil {
			log.Fatalf("Failed to insert chunk: %v", err)
		}
	}

	// Write the instruction template the payloads are built from
	instructionsPath := filepath.Join(os.TempDir(), "place_extraction_demo.md")
	if err := os.WriteFile(instructionsPath, []byte(sampleInstructions), 0o644); err != nil {
		log.Fatalf("Failed to write instruction template: %v", err)
	}
	defer os.Remove(instructionsPath)

	// Run in test mode: every chunk's payload is printed exactly as the
	// reasoning service would receive it, nothing is contacted or written.
	fmt.Println("Assembled payloads for all unreferenced chunks:")
	fmt.Println("------------------------------------------------")

	config := model.DefaultRunConfig()
	config.All = true
	config.TestMode = true
	config.InstructionsPath = instructionsPath

	if err := c.Run(context.Background(), &config); err != nil {
		log.Fatalf("Failed to run curation in test mode: %v", err)
	}

	// Show the catalog the way the operator sees it during confirmation
	catalog, err := c.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	fmt.Println("------------------------------------------------")
	fmt.Println("Operator catalog view:")
	fmt.Println()
	fmt.Print(resolve.HumanCatalogView(catalog))
}
