// Package ingestion builds the fragment corpus from weekly bulletin entries.
//
// The Importer reads JSON Lines produced by the external markdown splitter,
// one weekly entry per line, and for each entry:
//   - Splits the content into one fragment per topic
//   - Embeds "<topic label>: <text>" in batches on a worker pool
//   - Stores the fragments and checkpoints the last committed line
//
// A run interrupted part way through resumes after the checkpoint on the
// next Import of the same source. Re-importing a line is harmless because
// fragment keys are derived from the week and topic.
package ingestion
