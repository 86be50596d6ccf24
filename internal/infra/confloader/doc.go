// Package confloader loads ssmproxy configuration with koanf.
//
// Sources, later ones overriding earlier ones:
//
//  1. Defaults supplied by the caller
//  2. A YAML configuration file
//  3. Environment variables (SSMPROXY_SECTION_KEY)
//  4. Explicit overrides, usually command-line flags
//
// A Watcher reports changes to the configuration file so the server can
// re-read the reloadable subset of its settings.
package confloader
