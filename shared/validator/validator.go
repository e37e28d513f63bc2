package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"cnpgdemo/shared/failure"
)

var validate *val.Validate

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
}

// Validate decodes JSON from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. Decoding and validation problems both come back
// as 422 failures.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if errors.Is(err, io.EOF) {
		return failure.UnprocessableFromString("request body is required") //nolint:wrapcheck
	}

	if err != nil {
		return failure.Unprocessable(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.UnprocessableFromString(msg) //nolint:wrapcheck
	}

	return nil
}
