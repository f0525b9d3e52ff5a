// Package awss3 implements the object store contract on top of aws-sdk-go-v2.
//
// Listing uses the SDK paginator, uploads go through the transfer manager so
// large files are sent as multipart uploads with a fixed part size. The part
// size must match the one used by the sync oracle for multipart ETags of
// objects written by this package to compare equal on the next run.
package awss3
