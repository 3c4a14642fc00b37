package filter

import (
	_ "embed"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed wire.cue
var wireSchemaSource string

var (
	wireSchemaOnce  sync.Once
	wireSchemaValue cue.Value
	wireSchemaErr   error
)

// wireSchema compiles the embedded CUE wire grammar once per process.
func wireSchema() (cue.Value, error) {
	wireSchemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(wireSchemaSource, cue.Filename("wire.cue"))
		if err := v.Err(); err != nil {
			wireSchemaErr = err
			return
		}
		wireSchemaValue = v.LookupPath(cue.ParsePath("#RequestBody"))
		wireSchemaErr = wireSchemaValue.Err()
	})
	return wireSchemaValue, wireSchemaErr
}

// ValidateWire checks raw wire text against the CUE wire grammar before any
// structural decoding happens.
//
// This is a stricter surface than Decode: the grammar definitions are
// closed, so unknown keys and unknown operator names - which the lenient
// decoder ignores or drops - are reported as errors here. Blank input is
// valid (it decodes to absence). The filters/children exclusivity policy is
// a separate pre-check (Decoder.Strict), not part of the grammar.
func ValidateWire(data []byte) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	schema, err := wireSchema()
	if err != nil {
		return &DecodeError{Message: "wire grammar schema is broken", Err: err}
	}

	expr, err := cuejson.Extract("request.json", data)
	if err != nil {
		return &DecodeError{Message: "malformed request body", Err: err}
	}

	unified := schema.Unify(schema.Context().BuildExpr(expr))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &DecodeError{
			Message: "wire grammar violation: " + cueerrors.Details(err, nil),
			Err:     err,
		}
	}
	return nil
}
