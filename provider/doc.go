// Package provider implements the client for the hosted inference
// provider's job queue and object storage.
//
// Jobs are submitted to a queue endpoint, tracked through queued,
// in-progress and completed phases, and their result payloads fetched once
// terminal. Input buffers are uploaded to the provider's object storage and
// referenced by URL in job payloads. The HTTP semantics mirror the
// provider's published queue contract; nothing here invents a protocol.
package provider
