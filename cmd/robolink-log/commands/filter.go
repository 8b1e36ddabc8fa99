package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/robolink-protocol/robolink-go/pkg/log"
)

// RunFilter reads the capture at path, keeps events matching filter
// and writes them to a new capture file at output.
func RunFilter(path string, filter log.Filter, output string) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	encoder := log.NewEncoder(out)
	kept := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		kept++
	}

	fmt.Printf("Wrote %d events to %s\n", kept, output)
	return nil
}
