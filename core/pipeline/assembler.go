package pipeline

import (
	"fmt"
	"strings"

	"github.com/pythagorakase/nexus-sub001/model"
)

// ChunkContext carries the narrative context for one chunk.
// Previous is nil for the first chunk of the narrative. PreviousSetting is
// the previously confirmed setting of the previous chunk, its mention and
// transit references are deliberately withheld so the reasoning service is
// not nudged into restating them.
type ChunkContext struct {
	Catalog         *model.Catalog
	Previous        *model.Chunk
	PreviousSetting *model.PlaceChunkReference
	Current         *model.Chunk
}

// Payload is the complete input for one extraction call.
// Instructions come from the externally supplied template, verbatim.
type Payload struct {
	Instructions string
	Context      ChunkContext
}

// Assemble builds the payload for the current chunk.
// Nothing beyond the current chunk ever enters the payload, extraction is
// strictly causal.
func Assemble(instructions string, catalog *model.Catalog, previous *model.Chunk, previousSetting *model.PlaceChunkReference, current *model.Chunk) Payload {
	return Payload{
		Instructions: instructions,
		Context: ChunkContext{
			Catalog:         catalog,
			Previous:        previous,
			PreviousSetting: previousSetting,
			Current:         current,
		},
	}
}

// Render concatenates the payload in fixed order: instructions, catalog,
// previous chunk, current chunk. The rendered string is exactly what the
// invoker sends, test mode prints these bytes.
func (p Payload) Render() string {
	var builder strings.Builder

	builder.WriteString(p.Instructions)
	builder.WriteString("\n\n## Known locations\n\n")
	builder.WriteString(ServiceCatalogView(p.Context.Catalog))

	builder.WriteString("\n## Previous chunk\n\n")
	if p.Context.Previous == nil {
		builder.WriteString("(no previous chunk)\n")
	} else {
		if p.Context.PreviousSetting != nil {
			fmt.Fprintf(&builder, "Setting: [%d] %s\n\n", p.Context.PreviousSetting.PlaceID, p.Context.PreviousSetting.PlaceName)
		}
		builder.WriteString(p.Context.Previous.RawText)
		builder.WriteString("\n")
	}

	builder.WriteString("\n## Current chunk\n\n")
	builder.WriteString(p.Context.Current.RawText)
	builder.WriteString("\n")

	return builder.String()
}

// ServiceCatalogView renders the catalog for the reasoning service.
// Places are grouped under their zone display name, place ids stay visible
// so the service can cite known places, zone ids never appear.
func ServiceCatalogView(catalog *model.Catalog) string {
	if catalog == nil || len(catalog.Zones) == 0 {
		return "(no known locations yet)\n"
	}

	var builder strings.Builder
	for _, zone := range catalog.Zones {
		fmt.Fprintf(&builder, "### %s\n", zone.Name)
		for _, place := range catalog.PlacesInZone(zone.ID) {
			writePlaceLine(&builder, place)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func writePlaceLine(builder *strings.Builder, place model.Place) {
	if place.Summary == "" {
		fmt.Fprintf(builder, "[%d] %s\n", place.ID, place.Name)
		return
	}
	fmt.Fprintf(builder, "[%d] %s - %s\n", place.ID, place.Name, place.Summary)
}
