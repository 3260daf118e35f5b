package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golangsnmp/goder"
	"github.com/golangsnmp/goder/cmd/internal/cliutil"
)

const schemaUsage = `goder schema - Dump the parsed schema dictionary as JSON

Usage:
  goder schema [options]

Options:
  --schema PATH   ASN.1 schema file (required)
  -o FILE         Write to FILE instead of stdout
  -pretty         Indent the JSON output
  -h, --help      Show help

The dump shows exactly what the extractor captured: CHOICE tag tables
(with synthetic keys for untagged alternatives), SEQUENCE/SET field
maps, primitive kinds, and aliases. Useful for checking why a field
comes out as unknown_tag_N.

Examples:
  goder schema --schema cdr.asn1
  goder schema --schema cdr.asn1 -pretty -o dict.json
`

func (c *cli) cmdSchema(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, schemaUsage) }

	schemaPath := fs.String("schema", "", "ASN.1 schema file")
	outputFile := fs.String("o", "", "output file")
	pretty := fs.Bool("pretty", false, "indent JSON output")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, schemaUsage)
		return exitOK
	}

	if *schemaPath == "" {
		printError("--schema is required")
		fmt.Fprint(os.Stderr, schemaUsage)
		return exitError
	}

	text, err := os.ReadFile(*schemaPath)
	if err != nil {
		printError("read schema file: %v", err)
		return exitError
	}

	dict, err := goder.ParseSchema(text, c.setupLogger())
	if err != nil {
		printError("parse schema: %v", err)
		return exitError
	}

	out, cleanup, err := cliutil.GetOutput(*outputFile)
	if err != nil {
		printError("open output: %v", err)
		return exitError
	}
	defer cleanup()

	data, err := marshalDictionary(dict, *pretty)
	if err != nil {
		printError("marshal dictionary: %v", err)
		return exitError
	}
	data = append(data, '\n')

	if _, err := out.Write(data); err != nil {
		printError("write output: %v", err)
		return exitError
	}
	return exitOK
}
