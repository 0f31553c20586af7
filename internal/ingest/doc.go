// Package ingest implements the tool-ingestion pipeline: deriving a
// canonical domain from a user-submitted link, probing it for
// reachability, extracting product metadata from its rendered content via
// a language model, and resolving a favicon URL. The pipeline runs the
// stages in a fixed order and aborts on the first failure so that no
// partially derived tool is ever persisted.
package ingest
