package constant

import (
	"os"
	"strings"
)

// DefaultInstructions seeds the local inference path when no instruction
// file is present.
const DefaultInstructions = "You are a helpful assistant."

// LoadInstructions reads the system instructions for the local inference
// path from instructions.txt, falling back to the default.
func LoadInstructions(path string) string {
	if path == "" {
		path = "instructions.txt"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultInstructions
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return DefaultInstructions
	}
	return text
}
