// Package output renders CLI results as a table, JSON or YAML.
//
// JSON and YAML share the server's JSON field names. The table format
// renders a *Table as is and flattens anything else into key/value rows.
package output
