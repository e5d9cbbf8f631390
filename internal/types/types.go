// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles —
// handlers and storage can both import types without depending on
// each other.
package types

// Student represents a single student record.
//
// The json tags control how the record appears both on the wire and in
// the JSON data file (the file format is an array of these objects).
// The validate tags are checked by go-playground/validator before a
// record is accepted, whether it arrives as an API body or an HTML form.
//
// RollNo is the record identifier: unique across the collection
// (compared case-insensitively) and the key used by search and by the
// email update. Email is the only field that can change after creation.
type Student struct {
	Name       string `json:"name"       validate:"required"`
	RollNo     string `json:"roll_no"    validate:"required"`
	Department string `json:"department" validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
}
