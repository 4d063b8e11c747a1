package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// InjectGlobals injects each entry of globals as window.__KEY__ = <json>; in a
// single script tag placed right after <head>.
// Keys are emitted in sorted order so output is stable.
func InjectGlobals(htmlContent []byte, globals map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(globals))
	for key := range globals {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var script strings.Builder

	script.WriteString("\n    <script>\n")

	for _, key := range keys {
		data, err := json.Marshal(globals[key])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}

		// Replace </ with <\/ to prevent premature script tag closure
		safe := strings.ReplaceAll(string(data), "</", `<\/`)

		fmt.Fprintf(&script, "      window.__%s__ = %s;\n", strings.ToUpper(key), safe)
	}

	script.WriteString("    </script>\n")

	headTag := []byte("<head>")
	headIndex := bytes.Index(htmlContent, headTag)

	if headIndex == -1 {
		return nil, fmt.Errorf("could not find <head> tag in HTML")
	}

	insertPos := headIndex + len(headTag)
	result := make([]byte, 0, len(htmlContent)+script.Len())
	result = append(result, htmlContent[:insertPos]...)
	result = append(result, script.String()...)
	result = append(result, htmlContent[insertPos:]...)

	return result, nil
}
