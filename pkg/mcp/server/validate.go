package server

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// argumentValidator checks tool arguments against the advertised input schema
type argumentValidator struct {
	schema *jsonschema.Schema
}

func newArgumentValidator(name string, schemaJSON json.RawMessage) (*argumentValidator, error) {
	// UnmarshalJSON keeps numbers as json.Number, which the validator requires
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal schema of %s", name)
	}

	location := name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(location, doc); err != nil {
		return nil, errors.Wrapf(err, "failed to add schema of %s", name)
	}
	schema, err := c.Compile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile schema of %s", name)
	}

	return &argumentValidator{schema: schema}, nil
}

// Validate returns an error describing every schema violation in args
func (v *argumentValidator) Validate(args json.RawMessage) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return errors.Wrap(err, "arguments are not valid JSON")
	}
	if err := v.schema.Validate(parsed); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}
