// Package s3drive implements internal/remote.Adapter over an S3 bucket.
// A "drive" is a bucket; "folders" are simulated with common prefixes, the
// same trick the AWS console uses: a folder is a zero-byte object whose
// key ends in "/", and ListObjectsV2's Delimiter="/" groups its children.
package s3drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/adrive/adrive-sync/internal/remote"
	"github.com/adrive/adrive-sync/internal/synerr"
)

// sha1MetaKey is the object metadata key s3drive stores the hex SHA-1
// under, so BeginUpload can detect a rapid-upload hit without downloading
// the object: a HeadObject call is enough.
const sha1MetaKey = "sha1"

// Backend is an S3-backed remote.Adapter. DriveID arguments passed to its
// methods are bucket names; a Backend is not pinned to one bucket so a
// single process can sync against several.
type Backend struct {
	client  *s3.Client
	presign *s3.PresignClient
	urlTTL  time.Duration
}

// Config is the credential and region material s3drive needs; it mirrors
// internal/config.S3Config.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// New builds a Backend from static credentials, adapting the teacher's
// S3Client construction (config.LoadDefaultConfig with an explicit
// credentials provider) but without the teacher's auto-refresh machinery:
// a one-shot sync run never lives long enough to need mid-run credential
// rotation.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, synerr.New(synerr.Config, "load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &Backend{
		client:  client,
		presign: s3.NewPresignClient(client),
		urlTTL:  15 * time.Minute,
	}, nil
}

func folderKey(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// ListDrives lists the bucket names the configured credentials can see,
// backing the `adrive-sync drives` subcommand. It is not part of
// remote.Adapter: drive discovery happens once, before a drive id is
// known, not per-reconciliation-run.
func (b *Backend) ListDrives(ctx context.Context) ([]string, error) {
	out, err := b.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, synerr.New(synerr.Remote, "list buckets", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, bucket := range out.Buckets {
		names = append(names, aws.ToString(bucket.Name))
	}
	return names, nil
}

func (b *Backend) ResolveFolder(ctx context.Context, bucket string, pathSegments []string) (remote.Entry, error) {
	prefix := folderKey(strings.Join(pathSegments, "/"))
	if prefix != "" {
		_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(prefix),
		})
		if err != nil {
			return remote.Entry{}, synerr.New(synerr.Remote, fmt.Sprintf("resolve folder %s", prefix), err)
		}
	}
	return remote.Entry{DriveID: bucket, FileID: prefix, Kind: remote.RemoteFolder}, nil
}

func (b *Backend) listChildren(ctx context.Context, bucket, prefix string) ([]remote.Entry, error) {
	var entries []remote.Entry
	var token *string
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, synerr.New(synerr.Remote, fmt.Sprintf("list objects under %s", prefix), err)
		}

		for _, cp := range out.CommonPrefixes {
			key := aws.ToString(cp.Prefix)
			name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "/")
			entries = append(entries, remote.Entry{DriveID: bucket, FileID: key, Name: name, Kind: remote.RemoteFolder})
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue // the folder's own zero-byte marker object
			}
			name := strings.TrimPrefix(key, prefix)
			entries = append(entries, remote.Entry{
				DriveID:   bucket,
				FileID:    key,
				Name:      name,
				Kind:      remote.RemoteFile,
				UpdatedAt: aws.ToTime(obj.LastModified).UTC(),
			})
		}

		if !aws.ToBool(out.IsTruncated) {
			return entries, nil
		}
		token = out.NextContinuationToken
	}
}

func (b *Backend) ListChildren(ctx context.Context, bucket, folderID string) ([]remote.Entry, error) {
	return b.listChildren(ctx, bucket, folderID)
}

func (b *Backend) ListChildrenFiltered(ctx context.Context, bucket, folderID string) ([]remote.Entry, error) {
	all, err := b.listChildren(ctx, bucket, folderID)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.Name == "passbook" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *Backend) CreateFolder(ctx context.Context, bucket, parentID, name string) (string, error) {
	key := parentID + name + "/"
	if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err == nil {
		return "", synerr.New(synerr.Consistency, fmt.Sprintf("create folder %s", key), fmt.Errorf("already exists"))
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return "", synerr.New(synerr.Remote, fmt.Sprintf("create folder %s", key), err)
	}
	return key, nil
}

func (b *Backend) BeginUpload(ctx context.Context, bucket, parentID, name string, size int64, sha1Hex string, mtime, ctime time.Time) (remote.BeginUploadResult, error) {
	key := parentID + name

	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err == nil {
		if head.Metadata[sha1MetaKey] == sha1Hex {
			return remote.BeginUploadResult{Session: remote.UploadSession{DriveID: bucket, FileID: key}, RapidUpload: true}, nil
		}
		return remote.BeginUploadResult{Exist: true}, nil
	}

	req, err := b.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			sha1MetaKey: sha1Hex,
			"mtime":     mtime.UTC().Format(time.RFC3339),
			"ctime":     ctime.UTC().Format(time.RFC3339),
		},
	}, s3.WithPresignExpires(b.urlTTL))
	if err != nil {
		return remote.BeginUploadResult{}, synerr.New(synerr.Remote, fmt.Sprintf("presign put %s", key), err)
	}

	return remote.BeginUploadResult{Session: remote.UploadSession{
		DriveID:       bucket,
		FileID:        key,
		UploadID:      key,
		PartUploadURL: req.URL,
	}}, nil
}

func (b *Backend) PutPart(ctx context.Context, session remote.UploadSession, body io.Reader, size int64) error {
	return remote.PutViaHTTP(ctx, session.PartUploadURL, body, size)
}

func (b *Backend) CompleteUpload(ctx context.Context, bucket, fileID, uploadID string) error {
	return nil // single-part PUT; nothing left to finalize
}

func (b *Backend) GetDownloadURL(ctx context.Context, bucket, fileID string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(fileID),
	}, s3.WithPresignExpires(b.urlTTL))
	if err != nil {
		return "", synerr.New(synerr.Remote, fmt.Sprintf("presign get %s", fileID), err)
	}
	return req.URL, nil
}

func (b *Backend) Delete(ctx context.Context, bucket, fileID string) error {
	if strings.HasSuffix(fileID, "/") {
		children, err := b.listChildren(ctx, bucket, fileID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := b.Delete(ctx, bucket, child.FileID); err != nil {
				return err
			}
		}
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(fileID)})
	if err != nil {
		return synerr.New(synerr.Remote, fmt.Sprintf("delete %s", fileID), err)
	}
	return nil
}

var _ remote.Adapter = (*Backend)(nil)
