// Package reembed rebuilds the embedding of every stored fragment with a new
// or updated embedding model.
//
// Fragments are processed in batches with retry and exponential backoff on the
// embedding service. Vectors are normalized to unit length before they are
// written back, and progress is reported to an io.Writer. The retry and
// progress helpers are shared with the ingestion builder.
package reembed
