// Package unversion keeps prompt templates out of application code.
// Prompts live in a YAML or JSON document, are looked up by hierarchical
// key, formatted with named variables, and optionally tracked via the
// usagelog subpackage.
package unversion
