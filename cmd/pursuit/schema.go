package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/purepursuit/control"
	"go.viam.com/purepursuit/progress"
)

// attributeSchemas groups the attribute schemas of every strategy by the config section that
// selects it.
func attributeSchemas() map[string]map[string]*jsonschema.Schema {
	return map[string]map[string]*jsonschema.Schema{
		"heading":  control.HeadingAttributeSchemas,
		"velocity": control.VelocityAttributeSchemas,
		"progress": progress.AttributeSchemas,
	}
}

func schemaAction(c *cli.Context) error {
	schemas := attributeSchemas()
	var out interface{} = schemas
	if section := c.Args().First(); section != "" {
		sectionSchemas, ok := schemas[section]
		if !ok {
			return errors.Errorf("unknown config section %q, expected heading, velocity or progress", section)
		}
		out = sectionSchemas
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(encoded))
	return nil
}
