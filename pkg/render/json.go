package render

import (
	"bytes"

	"github.com/matzehuels/reflow/pkg/document"
)

// RenderJSON encodes res as indented JSON.
func RenderJSON(res *document.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := document.WriteResult(res, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
