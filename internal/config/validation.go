package config

import (
	"fmt"
	"strings"

	"conductorsync/internal/reconciler"
	"conductorsync/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks every section of the configuration and reports all problems at once.
func (c Config) Validate() error {
	var errs ValidationErrors

	collect := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs.Add("logLevel", "must be one of: debug, info, warn, error", c.LogLevel)
	}

	collect(ValidateRequired("document.fileName", c.Document.FileName))
	if strings.ContainsRune(c.Document.FileName, '/') {
		errs.Add("document.fileName", "must be a file name, not a path", c.Document.FileName)
	}

	collect(ValidateOneOf("relocation.scope", c.Relocation.Scope,
		[]string{string(reconciler.ScopeHostedOnly), string(reconciler.ScopeAll)}))
	collect(ValidateOneOf("relocation.naming", c.Relocation.Naming,
		[]string{string(reconciler.NamingContentHash), string(reconciler.NamingBasename)}))
	collect(ValidateRequired("relocation.directory", c.Relocation.Directory))
	if c.Relocation.Parallelism < 1 {
		errs.Add("relocation.parallelism", "must be at least 1", c.Relocation.Parallelism)
	}

	collect(ValidateRequired("attachment.hostedInterface", c.Attachment.HostedInterface))
	collect(ValidateRequired("attachment.adminInterface", c.Attachment.AdminInterface))

	if c.Notify.Enabled {
		collect(ValidateRequired("notify.url", c.Notify.URL))
	}
	if c.Notify.Retries < 0 {
		errs.Add("notify.retries", "must not be negative", c.Notify.Retries)
	}
	if c.Notify.RetryDelay < 0 {
		errs.Add("notify.retryDelay", "must not be negative", c.Notify.RetryDelay)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
