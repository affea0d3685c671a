package main

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// printJSON renders v as indented JSON, optionally filtered through the
// --query JMESPath expression (evaluated over the JSON form, so field names
// match what the user sees).
func (a *app) printJSON(v any) error {
	if a.query != "" {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		filtered, err := jmespath.Search(a.query, doc)
		if err != nil {
			return fmt.Errorf("query %q: %w", a.query, err)
		}
		v = filtered
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
