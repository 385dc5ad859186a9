// Package validation wraps go-playground/validator with json field names and
// the content target rule, and reports the first failure as an apperror.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/pkg/apperror"
)

// MaxRoomIDLength bounds ids carried in websocket room joins.
const MaxRoomIDLength = 50

const tagExactlyOneTarget = "exactly_one_target"

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(targetStructLevel, domain.TargetRequest{})
	return v
}

func targetStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.TargetRequest)
	if _, _, ok := req.Target(); !ok {
		sl.ReportError(req.SnippetID, "snippetId", "SnippetID", tagExactlyOneTarget, "")
	}
}

// Struct validates s and returns an *apperror.AppError for the first failing
// field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("", err.Error())
	}
	fe := verrs[0]
	return apperror.Validation(fe.Field(), message(fe.Field(), fe.Tag(), fe.Param()))
}

// Target validates a target request and resolves it.
func Target(req domain.TargetRequest) (domain.ContentKind, string, error) {
	if err := Struct(req); err != nil {
		return "", "", err
	}
	kind, id, _ := req.Target()
	return kind, id, nil
}

// RoomID checks an id received in a room join. Only non-empty strings up to
// MaxRoomIDLength are accepted.
func RoomID(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperror.Validation("id", "id must be a string")
	}
	if s == "" {
		return "", apperror.Validation("id", "id is required")
	}
	if utf8.RuneCountInString(s) > MaxRoomIDLength {
		return "", apperror.Validation("id", fmt.Sprintf("id must be at most %d characters long", MaxRoomIDLength))
	}
	return s, nil
}

// CleanTags trims and lower-cases tags, dropping empties and entries longer
// than 50 characters, and keeps at most 10.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || utf8.RuneCountInString(t) > 50 {
			continue
		}
		out = append(out, t)
		if len(out) == 10 {
			break
		}
	}
	return out
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case tagExactlyOneTarget:
		return "exactly one of snippetId, docId or bugId is required"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}
