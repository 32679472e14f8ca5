// Package upload stores image files in a bucket and resolves their public URLs.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"picboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const DefaultBucket = "images"

// File is an image selected by the user, held in memory until it is uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Storage is the capability the uploader needs from an object store.
type Storage interface {
	Store(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string) error
	PublicURL(bucket, key string) string
}

// Remover is implemented by storages that can delete objects. The uploader
// uses it to clean up after a failed batch.
type Remover interface {
	Remove(ctx context.Context, bucket, key string) error
}

// Object identifies one stored image.
type Object struct {
	Bucket string
	Key    string
	URL    string
}

type Uploader struct {
	storage     Storage
	logger      *logger.Logger
	now         func() time.Time
	concurrency int
}

type Option func(u *Uploader)

// WithClock replaces time.Now when generating object keys.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

// WithConcurrency bounds the number of uploads in flight for one batch.
// Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return func(u *Uploader) {
		u.concurrency = n
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(u *Uploader) {
		u.logger = l
	}
}

func New(storage Storage, opts ...Option) *Uploader {
	u := &Uploader{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Key builds the object key for a file: "<unix millis>-<original name>".
func Key(now time.Time, name string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// UploadSingleImage stores one file and returns its public URL.
func (u *Uploader) UploadSingleImage(ctx context.Context, file *File, bucket string) (string, error) {
	obj, err := u.StoreImage(ctx, file, bucket)
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

// UploadMultipleImages stores all files concurrently. urls[i] belongs to files[i].
// The first failure fails the whole batch and no URLs are returned.
func (u *Uploader) UploadMultipleImages(ctx context.Context, files []*File, bucket string) ([]string, error) {
	objects, err := u.StoreImages(ctx, files, bucket)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(objects))
	for i, obj := range objects {
		urls[i] = obj.URL
	}
	return urls, nil
}

// StoreImage is UploadSingleImage returning the stored object instead of only its URL.
func (u *Uploader) StoreImage(ctx context.Context, file *File, bucket string) (Object, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return u.store(ctx, file, bucket, Key(u.now(), file.Name))
}

func (u *Uploader) store(ctx context.Context, file *File, bucket, key string) (Object, error) {
	if err := u.storage.Store(ctx, bucket, key, bytes.NewReader(file.Data), file.ContentType); err != nil {
		u.logError("Error uploading image %s/%s: %v", bucket, key, err)
		return Object{}, &UploadError{Bucket: bucket, Key: key, Err: err}
	}

	return Object{
		Bucket: bucket,
		Key:    key,
		URL:    u.storage.PublicURL(bucket, key),
	}, nil
}

// BatchKeys builds one key per file from a single timestamp. Files sharing a
// name get the following milliseconds so no key repeats within the batch.
func BatchKeys(now time.Time, files []*File) []string {
	keys := make([]string, len(files))
	used := make(map[string]bool, len(files))
	for i, file := range files {
		at := now
		key := Key(at, file.Name)
		for used[key] {
			at = at.Add(time.Millisecond)
			key = Key(at, file.Name)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

// StoreImages is UploadMultipleImages returning the stored objects. When one upload
// fails, every key of the batch is removed if the storage supports it, since a
// cancelled upload may still have reached the store.
func (u *Uploader) StoreImages(ctx context.Context, files []*File, bucket string) ([]Object, error) {
	objects := make([]Object, len(files))
	if len(files) == 0 {
		return objects, nil
	}
	if bucket == "" {
		bucket = DefaultBucket
	}

	keys := BatchKeys(u.now(), files)
	attempted := make([]Object, len(files))
	for i, key := range keys {
		attempted[i] = Object{Bucket: bucket, Key: key}
	}

	g, gctx := errgroup.WithContext(ctx)
	if u.concurrency > 0 {
		g.SetLimit(u.concurrency)
	}

	for i, file := range files {
		g.Go(func() error {
			obj, err := u.store(gctx, file, bucket, keys[i])
			if err != nil {
				return err
			}
			objects[i] = obj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.logError("Error uploading multiple images: %v", err)
		u.Discard(context.WithoutCancel(ctx), attempted)
		return nil, err
	}

	return objects, nil
}

// Discard removes stored objects. Entries with an empty key are skipped.
// Failures are logged, not returned.
func (u *Uploader) Discard(ctx context.Context, objects []Object) {
	remover, ok := u.storage.(Remover)
	if !ok {
		return
	}
	for _, obj := range objects {
		if obj.Key == "" {
			continue
		}
		if err := remover.Remove(ctx, obj.Bucket, obj.Key); err != nil {
			u.logError("Failed to remove orphaned image %s/%s: %v", obj.Bucket, obj.Key, err)
		}
	}
}

func (u *Uploader) logError(format string, args ...interface{}) {
	if u.logger != nil {
		u.logger.Error(format, args...)
	}
}
