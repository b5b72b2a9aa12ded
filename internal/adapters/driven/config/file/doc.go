// Package file provides the TOML-backed driven.ConfigStore.
//
// Values are addressed with dot keys ("smtp.host") and written back as
// nested tables so the file stays hand-editable.
package file
