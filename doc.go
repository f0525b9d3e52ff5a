// Package s3concurrent synchronizes a local directory with an object store
// prefix using many concurrent transfers.
//
// A run has three cooperating parts sharing one task queue: an enumerator
// that lists the remote prefix (download) or walks the local tree (upload),
// a bounded pool of workers that drain the queue, and a periodic progress
// reporter. Before moving any bytes a worker asks the sync oracle whether the
// destination already holds the same content, comparing S3 entity tags
// (including the multipart form) against an MD5 of the local file. Failed
// transfers are re-enqueued and retried with a quadratic backoff until the
// configured retry ceiling.
//
// Example usage:
//
//	client, err := s3concurrent.New(ctx, "my-bucket",
//	    s3concurrent.WithRegion("eu-central-1"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Download(ctx, "releases/", "/srv/releases",
//	    s3concurrent.WithThreadCount(32),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("transferred %d, skipped %d\n", result.Stats.Transferred, result.Stats.Skipped)
package s3concurrent
