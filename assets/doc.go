// Package assets defines the narrow seams between the adapters and the
// workflow host's asset system, plus a content-addressed cache that
// deduplicates uploads of identical input buffers to provider storage.
package assets
