package controller

import (
	"fmt"
	"os"
)

func readLocalFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("controller: read %s: %w", path, err)
	}
	return data, nil
}
