package models

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-backend/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// projectColumnRules is the update allow-list: every column a caller may set,
// with the validation applied to a non-null value.
var projectColumnRules = map[string]string{
	"title":                  "required,notblank,max=200",
	"short_description":      "required,notblank",
	"tech_stack":             "max=300",
	"github_url":             "max=300",
	"live_url":               "max=300",
	"problem_statement":      "",
	"why_built":              "",
	"architecture":           "",
	"implementation_details": "",
	"challenges":             "",
	"learnings":              "",
	"future_improvements":    "",
}

// IsUpdatableColumn reports whether column may appear in a ProjectPatch.
func IsUpdatableColumn(column string) bool {
	_, ok := projectColumnRules[column]
	return ok
}

func isRequiredColumn(column string) bool {
	return strings.HasPrefix(projectColumnRules[column], "required")
}

// ProjectCreate is the body accepted when creating a project.
type ProjectCreate struct {
	Title                 string  `json:"title" validate:"required,notblank,max=200"`
	ShortDescription      string  `json:"short_description" validate:"required,notblank"`
	TechStack             *string `json:"tech_stack,omitempty" validate:"omitempty,max=300"`
	GithubURL             *string `json:"github_url,omitempty" validate:"omitempty,max=300"`
	LiveURL               *string `json:"live_url,omitempty" validate:"omitempty,max=300"`
	ProblemStatement      *string `json:"problem_statement,omitempty"`
	WhyBuilt              *string `json:"why_built,omitempty"`
	Architecture          *string `json:"architecture,omitempty"`
	ImplementationDetails *string `json:"implementation_details,omitempty"`
	Challenges            *string `json:"challenges,omitempty"`
	Learnings             *string `json:"learnings,omitempty"`
	FutureImprovements    *string `json:"future_improvements,omitempty"`
}

func (p ProjectCreate) Validate() error {
	return translateValidationError("", validate.Struct(p))
}

// ToProject builds the row to insert. ID and CreatedAt are left for the store.
func (p ProjectCreate) ToProject() *Project {
	return &Project{
		Title:                 p.Title,
		ShortDescription:      p.ShortDescription,
		TechStack:             p.TechStack,
		GithubURL:             p.GithubURL,
		LiveURL:               p.LiveURL,
		ProblemStatement:      p.ProblemStatement,
		WhyBuilt:              p.WhyBuilt,
		Architecture:          p.Architecture,
		ImplementationDetails: p.ImplementationDetails,
		Challenges:            p.Challenges,
		Learnings:             p.Learnings,
		FutureImprovements:    p.FutureImprovements,
	}
}

// ProjectPatch is a sparse update keyed by column name. A nil value clears a
// nullable column; absent keys are left untouched.
type ProjectPatch map[string]*string

func (p ProjectPatch) Set(column, value string) ProjectPatch {
	p[column] = &value
	return p
}

func (p ProjectPatch) Clear(column string) ProjectPatch {
	p[column] = nil
	return p
}

// Validate rejects unknown columns, nulls on required columns and values
// breaking the column rules. Columns are checked in name order.
func (p ProjectPatch) Validate() error {
	for _, column := range slices.Sorted(maps.Keys(p)) {
		if !IsUpdatableColumn(column) {
			return errs.NewUnknownFieldError(column)
		}

		value := p[column]
		if value == nil {
			if isRequiredColumn(column) {
				return errs.NewInvalidFieldError(column, "cannot be null")
			}
			continue
		}

		if rule := projectColumnRules[column]; rule != "" {
			if err := translateValidationError(column, validate.Var(*value, rule)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Columns converts the patch into the assignment map handed to the store.
func (p ProjectPatch) Columns() map[string]any {
	columns := make(map[string]any, len(p))
	for column, value := range p {
		if value == nil {
			columns[column] = nil
			continue
		}
		columns[column] = *value
	}
	return columns
}

func translateValidationError(field string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	name := field
	if name == "" {
		name = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(name)
	case "notblank":
		return errs.NewInvalidFieldError(name, "must not be blank")
	case "max":
		return errs.NewInvalidFieldError(name, "must be at most "+fe.Param()+" characters")
	default:
		return errs.NewInvalidFieldError(name, "failed "+fe.Tag()+" validation")
	}
}
