package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as indented JSON. HTML characters are not
// escaped, so a revealed password containing & or < prints as typed.
type JSONFormatter struct{}

// Format writes data followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}
