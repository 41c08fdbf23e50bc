// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of *s3.Client the pipeline depends on. Both the real
// SDK client and an in-memory test double satisfy it.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ProbeSize queries the blob store for the object's total size in bytes via
// a single HeadObject call. Concurrent mutation of the remote object after
// this sample is undefined behavior for the rest of the transfer.
func ProbeSize(ctx context.Context, client s3API, bucket, key string) (int64, error) {
	resp, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, wrapProbe(fmt.Sprintf("s3://%s/%s", bucket, key), err)
	}
	if resp.ContentLength == nil {
		return 0, wrapProbe(fmt.Sprintf("s3://%s/%s", bucket, key), fmt.Errorf("HeadObject returned no Content-Length"))
	}
	return *resp.ContentLength, nil
}
