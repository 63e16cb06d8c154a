package pipeline

import (
	"fmt"
	"os"
	"strings"
)

// LoadInstructions reads the instruction template from the given path.
// The template is passed downstream verbatim, nothing is ever rewritten
// or reformatted, so the operator keeps full authority over the prompt.
func LoadInstructions(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read instruction template: %w", err)
	}

	if strings.TrimSpace(string(content)) == "" {
		return "", fmt.Errorf("instruction template %s is empty", path)
	}

	return string(content), nil
}
