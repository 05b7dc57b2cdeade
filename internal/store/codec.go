package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-admin/internal/types"
)

// Encode renders v as the TypeScript constant declaration stored for r
func Encode(r types.Resource, v any) ([]byte, error) {
	t, ok := targets[r]
	if !ok {
		return nil, &InvalidTargetError{Target: string(r)}
	}

	var buf bytes.Buffer
	buf.WriteString(t.header)

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", r, err)
	}

	// Encoder terminates with a newline; the declaration ends with ";\n"
	buf.Truncate(buf.Len() - 1)
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// ExtractJSON returns the JSON literal embedded in a data file: the text after
// the first '=' of the export statement, without the trailing semicolon.
func ExtractJSON(content []byte) ([]byte, error) {
	idx := bytes.Index(content, []byte("export const"))
	if idx < 0 {
		return nil, fmt.Errorf("no export declaration found")
	}
	eq := bytes.IndexByte(content[idx:], '=')
	if eq < 0 {
		return nil, fmt.Errorf("export declaration has no initializer")
	}

	literal := bytes.TrimSpace(content[idx+eq+1:])
	literal = bytes.TrimSuffix(literal, []byte(";"))
	literal = bytes.TrimSpace(literal)
	if len(literal) == 0 {
		return nil, fmt.Errorf("empty initializer")
	}
	if !json.Valid(literal) {
		return nil, fmt.Errorf("initializer is not valid JSON")
	}
	return literal, nil
}

// Version returns the stamp of a file's content
func Version(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
