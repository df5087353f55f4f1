// Package plan renders compiled layers for people and tools: a styled text
// listing of the application order, a Graphviz dot export of the dependency
// graph, and an XML report for machine consumption.
package plan
