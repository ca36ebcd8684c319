package etl

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	accuracySchema        = mustSchema("schemas/accuracy.json")
	sdMetricsSchema       = mustSchema("schemas/sd_metrics.json")
	loadTestParamsSchema  = mustSchema("schemas/input_params.json")
	loadTestMetricsSchema = mustSchema("schemas/metrics.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read embedded schema %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return s
}

// validate checks doc against schema. Unparsable JSON and schema violations
// are both reported as ErrInvalidInput.
func validate(schema *gojsonschema.Schema, what string, doc []byte) error {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, what, err)
	}
	if !res.Valid() {
		msgs := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			msgs[i] = e.String()
		}
		return fmt.Errorf("%w: %s: %s", ErrInvalidInput, what, strings.Join(msgs, "; "))
	}
	return nil
}
