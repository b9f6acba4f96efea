// Package validator checks request and usecase input structs against their
// `validate` tags and reports failures keyed by JSON field name.
package validator
