// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// GCSService stores artifact versions as objects in a Google Cloud Storage
// bucket, one object per version under
// {app}/{user}/{session}/{filename}/{version}.
type GCSService struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

var _ types.ArtifactService = (*GCSService)(nil)

// NewGCSService creates a new [GCSService] over the given bucket using
// application default credentials.
func NewGCSService(ctx context.Context, bucketName string) (*GCSService, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{
			storage.ScopeReadWrite,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials for storage: %w", err)
	}

	client, err := storage.NewClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSService{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

// blobName constructs the object name for one version of an artifact.
func blobName(appName, userID, sessionID, filename string, version int) string {
	if hasUserNamespace(filename) {
		return fmt.Sprintf("%s/%s/user/%s/%d", appName, userID, filename, version)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%d", appName, userID, sessionID, filename, version)
}

// blobPrefix is the object prefix shared by all versions of an artifact.
func blobPrefix(appName, userID, sessionID, filename string) string {
	if hasUserNamespace(filename) {
		return fmt.Sprintf("%s/%s/user/%s/", appName, userID, filename)
	}
	return fmt.Sprintf("%s/%s/%s/%s/", appName, userID, sessionID, filename)
}

// SaveArtifact implements [types.ArtifactService].
func (s *GCSService) SaveArtifact(ctx context.Context, appName, userID, sessionID, filename string, artifact *genai.Part) (int, error) {
	if artifact == nil || artifact.InlineData == nil {
		return 0, errors.New("artifact must carry inline data")
	}

	versions, err := s.ListVersions(ctx, appName, userID, sessionID, filename)
	if err != nil {
		return 0, err
	}
	version := 0
	if len(versions) > 0 {
		version = slices.Max(versions) + 1
	}

	blob := s.bucket.Object(blobName(appName, userID, sessionID, filename, version))
	w := blob.NewWriter(ctx)
	w.ContentType = artifact.InlineData.MIMEType
	if _, err := w.Write(artifact.InlineData.Data); err != nil {
		w.Close()
		return 0, fmt.Errorf("write artifact %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("write artifact %s: %w", filename, err)
	}

	return version, nil
}

// LoadArtifact implements [types.ArtifactService].
func (s *GCSService) LoadArtifact(ctx context.Context, appName, userID, sessionID, filename string, version int) (*genai.Part, error) {
	if version < 0 {
		versions, err := s.ListVersions(ctx, appName, userID, sessionID, filename)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, nil
		}
		version = slices.Max(versions)
	}

	blob := s.bucket.Object(blobName(appName, userID, sessionID, filename, version))
	r, err := blob.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s version %d: %w", filename, version, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s version %d: %w", filename, version, err)
	}

	return genai.NewPartFromBytes(data, r.Attrs.ContentType), nil
}

// ListArtifactKey implements [types.ArtifactService].
func (s *GCSService) ListArtifactKey(ctx context.Context, appName, userID, sessionID string) ([]string, error) {
	eg, ctx := errgroup.WithContext(ctx)

	var sessionNames, userNames []string
	eg.Go(func() error {
		var err error
		sessionNames, err = s.listFilenames(ctx, fmt.Sprintf("%s/%s/%s/", appName, userID, sessionID))
		return err
	})
	eg.Go(func() error {
		var err error
		userNames, err = s.listFilenames(ctx, fmt.Sprintf("%s/%s/user/", appName, userID))
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	filenames := []string{}
	for _, name := range slices.Concat(sessionNames, userNames) {
		if !seen[name] {
			seen[name] = true
			filenames = append(filenames, name)
		}
	}
	slices.Sort(filenames)

	return filenames, nil
}

// listFilenames collects the distinct filename segments under a prefix.
func (s *GCSService) listFilenames(ctx context.Context, prefix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var filenames []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
		}

		// {app}/{user}/{session-or-user}/{filename}/{version}
		if parts := strings.Split(attrs.Name, "/"); len(parts) == 5 {
			filenames = append(filenames, parts[3])
		}
	}

	return filenames, nil
}

// DeleteArtifact implements [types.ArtifactService].
func (s *GCSService) DeleteArtifact(ctx context.Context, appName, userID, sessionID, filename string) error {
	versions, err := s.ListVersions(ctx, appName, userID, sessionID, filename)
	if err != nil {
		return err
	}

	for _, version := range versions {
		blob := s.bucket.Object(blobName(appName, userID, sessionID, filename, version))
		if err := blob.Delete(ctx); err != nil {
			return fmt.Errorf("delete artifact %s version %d: %w", filename, version, err)
		}
	}

	return nil
}

// ListVersions implements [types.ArtifactService].
func (s *GCSService) ListVersions(ctx context.Context, appName, userID, sessionID, filename string) ([]int, error) {
	prefix := blobPrefix(appName, userID, sessionID, filename)
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var versions []int
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list versions of %s: %w", filename, err)
		}

		version, err := strconv.Atoi(attrs.Name[strings.LastIndex(attrs.Name, "/")+1:])
		if err != nil {
			continue
		}
		versions = append(versions, version)
	}
	slices.Sort(versions)

	return versions, nil
}

// Close implements [types.ArtifactService].
func (s *GCSService) Close() error {
	return s.client.Close()
}
