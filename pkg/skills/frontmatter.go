package skills

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const headerDelimiter = "---"

// ParseFrontmatter splits raw skill text into its decoded header block and body.
//
// The header block is recognized only when the first line is exactly "---" and
// a later line is exactly "---". The body is everything after the closing line.
// A header that fails to decode yields empty metadata while the body is still
// sliced at the closing delimiter. Without a header block the metadata is empty
// and the body is the input unchanged.
func ParseFrontmatter(raw string) (map[string]any, string) {
	metadata, body, _ := parseFrontmatter(raw)
	return metadata, body
}

// parseFrontmatter is ParseFrontmatter that also reports the header decode error
func parseFrontmatter(raw string) (map[string]any, string, error) {
	header, body, ok := splitHeader(raw)
	if !ok {
		return map[string]any{}, raw, nil
	}

	metadata, err := decodeHeader(header)
	if err != nil {
		return map[string]any{}, body, err
	}
	return metadata, body, nil
}

// splitHeader locates the delimited header block at the top of raw
func splitHeader(raw string) (string, string, bool) {
	text := strings.TrimPrefix(raw, "\ufeff")

	nl := strings.IndexByte(text, '\n')
	if nl < 0 || !isDelimiter(text[:nl]) {
		return "", raw, false
	}

	start := nl + 1
	for pos := start; ; {
		end := strings.IndexByte(text[pos:], '\n')

		line, next := text[pos:], len(text)
		if end >= 0 {
			line, next = text[pos:pos+end], pos+end+1
		}

		if isDelimiter(line) {
			return text[start:pos], text[next:], true
		}

		if end < 0 {
			return "", raw, false
		}
		pos = next
	}
}

func isDelimiter(line string) bool {
	return strings.TrimSuffix(line, "\r") == headerDelimiter
}

func decodeHeader(header string) (map[string]any, error) {
	if strings.TrimSpace(header) == "" {
		return map[string]any{}, nil
	}

	var metadata map[string]any
	if err := yaml.Unmarshal([]byte(header), &metadata); err != nil {
		return nil, errors.Wrap(err, "failed to decode header block")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return metadata, nil
}

// scalarToStringHook renders booleans and floats in their YAML spelling;
// weak decoding alone turns true into "1"
func scalarToStringHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	switch v := data.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return data, nil
}

// DecodeMetadata extracts the recognized keys from a decoded header mapping.
// Scalar values of other types are converted to strings; unknown keys are ignored.
func DecodeMetadata(metadata map[string]any) (Metadata, error) {
	var md Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &md,
		WeaklyTypedInput: true,
		DecodeHook:       scalarToStringHook,
	})
	if err != nil {
		return Metadata{}, errors.Wrap(err, "failed to create metadata decoder")
	}

	if err := decoder.Decode(metadata); err != nil {
		return Metadata{}, errors.Wrap(err, "invalid name or description in header block")
	}

	md.Name = strings.TrimSpace(md.Name)
	return md, nil
}
