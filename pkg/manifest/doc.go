// Package manifest reads layer manifests. A manifest is a TOML or YAML
// document (picked by file extension) holding a layer label, an optional
// parent label, and one stanza per feature. Decoding expands compound
// stanzas into the unit features the compiler works with, e.g. an
// ensure_dirs_exist stanza becomes one directory feature per path
// component.
package manifest
