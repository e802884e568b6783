package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateQuiz checks the structural rules of a quiz and all its questions.
func ValidateQuiz(q Quiz) error {
	if err := validate.Struct(q); err != nil {
		return translate(err)
	}
	for i, question := range q.Questions {
		if err := validateImageQuestion(question, fmt.Sprintf("questions[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuestion checks a single question.
func ValidateQuestion(question Question) error {
	if err := validate.Struct(question); err != nil {
		return translate(err)
	}
	return validateImageQuestion(question, "question")
}

// Image questions carry no text, so every option must be spelled out.
func validateImageQuestion(question Question, path string) error {
	if question.Image == nil {
		return nil
	}
	url := question.Image.URL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return NewValidationError(path+".image.url", url, "image url must be http or https")
	}
	for i, option := range question.Options {
		if strings.TrimSpace(option) == "" {
			return NewValidationError(
				fmt.Sprintf("%s.options[%d]", path, i), "",
				fmt.Sprintf("option %c is required for image questions", 'A'+i),
			)
		}
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("", "", err.Error())
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return NewValidationError(field, fmt.Sprint(fe.Value()), ruleText(fe))
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "question text is required when there is no image"
	case "len":
		return "there must be " + fe.Param() + " options"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	case "url":
		return "must be a valid url"
	}
	return "failed " + fe.Tag() + " rule"
}
