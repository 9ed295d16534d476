// Package storage provides an S3-compatible object storage client used to
// archive quarantine exports. Uploads are optional: the importer always
// writes rejected rows to the local output directory, and additionally
// uploads them when a bucket is configured so operators can inspect failed
// loads without shell access to the batch host.
package storage
