package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

const maxProjectBodySize = 1 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProjectBodySize))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("request body", err)
	}
	return body, nil
}

func projectIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "projectID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewInvalidFieldError("project_id", "must be an integer")
	}
	return id, nil
}

// decodeProjectCreate strictly decodes a create body: unknown keys and wrongly
// typed values are validation errors, broken JSON is a malformed payload.
func decodeProjectCreate(body []byte) (models.ProjectCreate, error) {
	var input models.ProjectCreate

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		return input, classifyDecodeError(err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return input, errs.NewMalformedPayloadError("project", errors.New("unexpected data after JSON object"))
	}

	if err := input.Validate(); err != nil {
		return input, err
	}
	return input, nil
}

// decodeProjectPatch turns a JSON object into a ProjectPatch. An explicit
// null clears the column; every other value must be a string.
func decodeProjectPatch(body []byte) (models.ProjectPatch, error) {
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, classifyDecodeError(err)
		}
	}

	patch := make(models.ProjectPatch, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		if !models.IsUpdatableColumn(key) {
			return nil, errs.NewUnknownFieldError(key)
		}

		value := raw[key]
		if string(bytes.TrimSpace(value)) == "null" {
			patch.Clear(key)
			continue
		}

		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, errs.NewInvalidFieldError(key, "must be a string or null")
		}
		patch.Set(key, s)
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return patch, nil
}

func classifyDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return errs.NewMalformedPayloadError("project", err)
		}
		return errs.NewInvalidFieldError(typeErr.Field, "must be of type "+typeErr.Type.String())
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return errs.NewUnknownFieldError(field)
	default:
		return errs.NewMalformedPayloadError("project", err)
	}
}
