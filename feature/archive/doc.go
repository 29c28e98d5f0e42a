// Package archive exports point-in-time snapshots of the local reading
// lists to S3-compatible object storage, one timestamped JSON object per
// export.
package archive
