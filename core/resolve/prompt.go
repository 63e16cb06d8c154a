package resolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pythagorakase/nexus-sub001/model"
)

// Prompter handles all terminal interaction during confirmation.
// Reader and Writer are injectable so tests can script a whole session,
// production code uses stdin and stdout.
type Prompter struct {
	Reader *bufio.Reader
	Writer io.Writer
}

// NewPrompter creates a prompter on stdin and stdout.
func NewPrompter() *Prompter {
	return &Prompter{
		Reader: bufio.NewReader(os.Stdin),
		Writer: os.Stdout,
	}
}

// readLine reads one trimmed line of operator input.
// A final line without a trailing newline is still returned.
func (p *Prompter) readLine() (string, error) {
	input, err := p.Reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadChoice prompts for a menu choice. Empty input defaults to accept.
func (p *Prompter) ReadChoice() (string, error) {
	fmt.Fprint(p.Writer, color.CyanString("choice [1]: "))
	return p.readLine()
}

// ReadField prompts for one edit field. Empty input keeps the default.
func (p *Prompter) ReadField(label string, defaultValue string) (string, error) {
	fmt.Fprintf(p.Writer, "%s [%s]: ", label, defaultValue)
	input, err := p.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// ReadRequired prompts for a field without a default until the operator
// enters something.
func (p *Prompter) ReadRequired(label string) (string, error) {
	for {
		fmt.Fprintf(p.Writer, "%s (required): ", label)
		input, err := p.readLine()
		if err != nil {
			return "", err
		}
		if input != "" {
			return input, nil
		}
	}
}

// ReadLink prompts for the target of a link.
func (p *Prompter) ReadLink() (string, error) {
	fmt.Fprint(p.Writer, color.CyanString("link place id (or search term, empty to reshow, b to go back): "))
	return p.readLine()
}

// Warnf prints a recoverable input problem. The operator gets another try,
// nothing is aborted.
func (p *Prompter) Warnf(format string, args ...interface{}) {
	fmt.Fprintln(p.Writer, color.YellowString(format, args...))
}

// Stagedf prints a confirmation that a reference was staged.
func (p *Prompter) Stagedf(format string, args ...interface{}) {
	fmt.Fprintln(p.Writer, color.GreenString(format, args...))
}

// ShowAutoAccepted announces a known-place reference that was staged
// without a prompt.
func (p *Prompter) ShowAutoAccepted(place *model.Place, refType model.ReferenceType) {
	p.Stagedf("auto-accepted [%d] %s (%s)", place.ID, place.Name, refType)
}

// ShowSuggestion displays one new-place suggestion with the confirmation
// menu. Neighbors are optional near-duplicate candidates from the
// embedding assist.
func (p *Prompter) ShowSuggestion(chunk *model.Chunk, suggestion model.NewPlaceSuggestion, neighbors []*model.Place) {
	fmt.Fprintf(p.Writer, "\n%s\n", color.CyanString("New place suggested for %s:", chunk.Label()))
	fmt.Fprintf(p.Writer, "  name:    %s\n", suggestion.Name)
	fmt.Fprintf(p.Writer, "  zone:    %s\n", suggestion.Zone)
	fmt.Fprintf(p.Writer, "  summary: %s\n", suggestion.Summary)
	fmt.Fprintf(p.Writer, "  type:    %s\n", suggestion.Type)

	if len(neighbors) > 0 {
		fmt.Fprintln(p.Writer, color.YellowString("  similar existing places:"))
		for _, place := range neighbors {
			fmt.Fprintf(p.Writer, "    [%d] %s (%s, similarity %.2f)\n", place.ID, place.Name, place.ZoneName, place.Similarity)
		}
	}

	fmt.Fprintln(p.Writer, "[1] accept (default)  [0] reject  [2] link to existing place  [9] quit run")
}

// ShowCatalog displays the human catalog view.
func (p *Prompter) ShowCatalog(catalog *model.Catalog) {
	fmt.Fprint(p.Writer, HumanCatalogView(catalog))
}

// ShowPlaces displays a flat list of places, used for link search results.
func (p *Prompter) ShowPlaces(places []*model.Place) {
	if len(places) == 0 {
		fmt.Fprintln(p.Writer, "(no matching places)")
		return
	}
	for _, place := range places {
		fmt.Fprintf(p.Writer, "[%d] %s (%s) - %s\n", place.ID, place.Name, place.ZoneName, place.Summary)
	}
}

// HumanCatalogView renders the catalog for the operator. Unlike the view
// sent to the reasoning service it keeps zone identifiers visible, the
// operator needs them when correcting a place's zone.
func HumanCatalogView(catalog *model.Catalog) string {
	if catalog == nil || len(catalog.Zones) == 0 {
		return "(no known locations yet)\n"
	}

	var builder strings.Builder
	for _, zone := range catalog.Zones {
		fmt.Fprintf(&builder, "%s\n", color.CyanString("=== %s (zone %d) ===", zone.Name, zone.ID))
		for _, place := range catalog.PlacesInZone(zone.ID) {
			if place.Summary == "" {
				fmt.Fprintf(&builder, "[%d] %s\n", place.ID, place.Name)
				continue
			}
			fmt.Fprintf(&builder, "[%d] %s - %s\n", place.ID, place.Name, place.Summary)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
