package fingerprint

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed data/glasses.yaml
var embeddedDatabaseYAML []byte

var validate = validator.New()

// Builtin returns the database compiled into the binary.
func Builtin() (*Database, error) {
	db, err := Parse(embeddedDatabaseYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin database: %w", err)
	}
	return db, nil
}

// Load returns the database at path, or the builtin one when path is empty.
// A file replaces the builtin tables entirely.
func Load(path string) (*Database, error) {
	if path == "" {
		return Builtin()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database %s: %w", path, err)
	}
	db, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	return db, nil
}

// Parse decodes and validates a YAML database.
func Parse(data []byte) (*Database, error) {
	var db Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse fingerprint YAML: %w", err)
	}
	if len(db.Companies) == 0 {
		return nil, ErrEmptyDatabase
	}
	if err := validate.Struct(&db); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %s failed %q", ErrInvalidRecord, verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	for i := range db.Payloads {
		p := &db.Payloads[i]
		raw, err := hex.DecodeString(strings.ReplaceAll(p.Hex, "_", ""))
		if err != nil || len(raw) == 0 {
			return nil, fmt.Errorf("%w: payload %d has bad hex %q", ErrInvalidRecord, i, p.Hex)
		}
		p.Pattern = raw
	}
	for i, n := range db.Names {
		db.Names[i].Pattern = strings.ToLower(n.Pattern)
	}
	return &db, nil
}
