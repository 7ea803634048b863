package product

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var (
	errBadJSON = errors.New("bad json")

	validate = newValidator()
)

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Input is the body accepted by create and replace. Precio is a pointer so
// that an explicit 0 passes "required" while a missing or null price fails.
type Input struct {
	Nombre      string     `json:"nombre" validate:"required"`
	Precio      *float64   `json:"precio" validate:"required"`
	CategoriaID CategoryID `json:"categoriaID" validate:"required"`
	Descripcion string     `json:"descripcion" validate:"required"`
}

func (in Input) Validate() error {
	return validate.Struct(in)
}

// Product converts a validated input; callers must run Validate first.
func (in Input) Product() Product {
	return Product{
		Nombre:      in.Nombre,
		Precio:      *in.Precio,
		CategoriaID: in.CategoriaID,
		Descripcion: in.Descripcion,
	}
}

// decodeInput treats an empty body as an empty object, which then fails
// validation rather than JSON parsing.
func decodeInput(w http.ResponseWriter, r *http.Request) (Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var in Input
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return Input{}, nil
		}
		return Input{}, errors.Join(errBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Input{}, errors.Join(errBadJSON, errors.New("extra data after json object"))
	}
	return in, nil
}

// missingFields lists the json names of the fields that failed validation.
func missingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out
}
