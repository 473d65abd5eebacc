// Package validation checks user input locally before it reaches the gateway.
// Failures are service.ErrValidation errors and never change session state.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskflow/internal/service"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const (
	schemaTaskCreate = "task_create.json"
	schemaTaskUpdate = "task_update.json"
	schemaSignup     = "signup.json"
	schemaProfile    = "profile.json"
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// fieldOrder decides which message wins when several properties are missing.
var fieldOrder = []string{"/title", "/name", "/email", "/password", "/priority", "/dueDate"}

// fieldMessages maps an instance location to the message shown for any
// failure at that location.
var fieldMessages = map[string]string{
	"/title":    "title required",
	"/priority": "priority must be low, medium or high",
	"/dueDate":  "due date must be YYYY-MM-DD",
	"/name":     "name required",
	"/email":    "a valid email is required",
	"/password": "password required",
}

func schemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		compiler.AssertFormat = true

		names := []string{schemaTaskCreate, schemaTaskUpdate, schemaSignup, schemaProfile}
		for _, name := range names {
			data, err := schemaFiles.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, strings.NewReader(string(data))); err != nil {
				compileErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}

		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			out[name] = s
		}
		compiled = out
	})
	return compiled, compileErr
}

// TaskCreate validates input for a new task. A title is required.
func TaskCreate(in service.TaskInput) error {
	return validate(schemaTaskCreate, in, "invalid task")
}

// TaskUpdate validates input for a task update. At least one field must be set.
func TaskUpdate(in service.TaskInput) error {
	return validate(schemaTaskUpdate, in, "nothing to update")
}

// Signup validates a registration request.
func Signup(in service.SignupInput) error {
	return validate(schemaSignup, in, "invalid signup")
}

// Profile validates a profile update.
func Profile(in service.ProfileInput) error {
	return validate(schemaProfile, in, "invalid profile")
}

// Credentials validates password login input. OAuth credentials only need
// an authorization code.
func Credentials(c service.Credentials) error {
	if c.AuthCode != "" {
		return nil
	}
	if strings.TrimSpace(c.Email) == "" {
		return service.Validation("email required")
	}
	if c.Password == "" {
		return service.Validation("password required")
	}
	return nil
}

// PasswordChange validates a password change, including the confirmation.
func PasswordChange(current, next, confirm string) error {
	if current == "" {
		return service.Validation("current password required")
	}
	if next == "" {
		return service.Validation("new password required")
	}
	if next != confirm {
		return service.Validation("passwords do not match")
	}
	return nil
}

func validate(name string, in any, fallback string) error {
	all, err := schemas()
	if err != nil {
		return err
	}

	// The validator expects decoded JSON values, not Go structs.
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	err = all[name].Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return service.WrapError(service.ErrValidation, fallback, err)
	}
	return service.WrapError(service.ErrValidation, describe(ve, fallback), err)
}

// describe returns the message for the first leaf failure.
func describe(ve *jsonschema.ValidationError, fallback string) string {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	if msg, ok := fieldMessages[leaf.InstanceLocation]; ok {
		return msg
	}
	if strings.HasPrefix(leaf.Message, "missing properties") {
		for _, loc := range fieldOrder {
			name := strings.TrimPrefix(loc, "/")
			if strings.Contains(leaf.Message, "'"+name+"'") || strings.Contains(leaf.Message, `"`+name+`"`) {
				return fieldMessages[loc]
			}
		}
	}
	return fallback
}
