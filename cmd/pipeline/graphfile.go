package main

import (
	"fmt"
	"os"

	"github.com/sohail300/pipeline"
)

// importGraph loads a saved graph JSON file into ed.
func importGraph(ed *pipeline.Editor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()

	snap, err := pipeline.ReadGraph(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return ed.Import(snap)
}
