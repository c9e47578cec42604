package nodetype

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk form of a set of node types.
//
//	node_types:
//	  - type: webhook
//	    label: Webhook
//	    config:
//	      title: Webhook
//	      fields:
//	        - {name: url, label: URL, type: text}
//	      handles:
//	        - {id: payload, kind: source, label: Payload}
type Catalog struct {
	NodeTypes []Entry `yaml:"node_types" validate:"dive"`
}

// CatalogError collects every problem found in a catalog.
type CatalogError struct {
	Errors []error
}

func (e *CatalogError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d catalog errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// LoadCatalog decodes and validates a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalogFile reads a catalog from disk and registers its node types.
func LoadCatalogFile(reg *Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := LoadCatalog(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return c.RegisterInto(reg)
}

// RegisterInto registers every entry, stopping at the first conflict.
func (c *Catalog) RegisterInto(reg *Registry) error {
	for _, e := range c.NodeTypes {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks struct constraints and the rules tags cannot express:
// unique field names and handle ids, and non-empty options on select fields.
func (c *Catalog) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	seenTypes := make(map[string]bool)
	for i, e := range c.NodeTypes {
		prefix := fmt.Sprintf("node_types[%d]", i)
		if seenTypes[e.Type] {
			errs = append(errs, fmt.Errorf("%s: duplicate type %q", prefix, e.Type))
		}
		seenTypes[e.Type] = true

		fields := make(map[string]bool)
		for j, f := range e.Config.Fields {
			if fields[f.Name] {
				errs = append(errs, fmt.Errorf("%s.config.fields[%d]: duplicate name %q", prefix, j, f.Name))
			}
			fields[f.Name] = true
			if f.Type == FieldSelect && len(f.Options) == 0 {
				errs = append(errs, fmt.Errorf("%s.config.fields[%d]: select field %q has no options", prefix, j, f.Name))
			}
		}

		handles := make(map[string]bool)
		for j, h := range e.Config.Handles {
			if handles[h.ID] {
				errs = append(errs, fmt.Errorf("%s.config.handles[%d]: duplicate id %q", prefix, j, h.ID))
			}
			handles[h.ID] = true
		}
	}

	if len(errs) > 0 {
		return &CatalogError{Errors: errs}
	}
	return nil
}

// WriteCatalog encodes the registry's node types as YAML.
func WriteCatalog(w io.Writer, reg *Registry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Catalog{NodeTypes: reg.Entries()}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
