// Package files is the file-resource collaborator: it turns an uploaded
// document payload into a durable URI that a version's page content can
// reference. The engine itself only ever sees the URI.
package files

import (
	"context"
	"io"
)

// Store persists version page payloads.
type Store interface {
	// Put stores the payload under a name derived from documentID and
	// filename and returns the durable URI referencing it.
	Put(ctx context.Context, documentID, filename, contentType string, payload io.Reader) (string, error)
}
