// Package pipeline runs the ingestion batch: acquire each source page, extract its listings,
// normalize them and write the resulting events.
//
// Sources are processed one after another in configuration order. A source that fails to load
// contributes no events and a listing that fails to extract is skipped; neither stops the batch.
// Uploading creates one record per event. Nothing is deduplicated, so running the same sources
// twice writes every event twice.
package pipeline
