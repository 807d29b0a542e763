// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func textPart(text string) *genai.Part {
	return genai.NewPartFromBytes([]byte(text), "text/plain")
}

func TestSaveArtifactVersioning(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	for i, want := range []int{0, 1, 2} {
		version, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "report.txt", textPart("v"))
		if err != nil {
			t.Fatal(err)
		}
		if version != want {
			t.Errorf("save %d returned version %d, want %d", i, version, want)
		}
	}

	versions, err := svc.ListVersions(ctx, "app", "u1", "s1", "report.txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, versions); diff != "" {
		t.Errorf("versions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadArtifactVersions(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	for _, text := range []string{"first", "second"} {
		if _, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "report.txt", textPart(text)); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := svc.LoadArtifact(ctx, "app", "u1", "s1", "report.txt", -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(latest.InlineData.Data); got != "second" {
		t.Errorf("latest version = %q, want second", got)
	}

	first, err := svc.LoadArtifact(ctx, "app", "u1", "s1", "report.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(first.InlineData.Data); got != "first" {
		t.Errorf("version 0 = %q, want first", got)
	}

	if _, err := svc.LoadArtifact(ctx, "app", "u1", "s1", "report.txt", 5); err == nil {
		t.Error("expected an error for a version that does not exist")
	}
}

func TestLoadArtifactUnknown(t *testing.T) {
	svc := NewInMemoryService()

	part, err := svc.LoadArtifact(context.Background(), "app", "u1", "s1", "missing.txt", -1)
	if err != nil {
		t.Fatal(err)
	}
	if part != nil {
		t.Errorf("part = %v, want nil for an unknown artifact", part)
	}
}

func TestUserNamespaceSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "user:profile.png", textPart("pic")); err != nil {
		t.Fatal(err)
	}

	part, err := svc.LoadArtifact(ctx, "app", "u1", "other-session", "user:profile.png", -1)
	if err != nil {
		t.Fatal(err)
	}
	if part == nil {
		t.Fatal("user-scoped artifact not visible from another session")
	}
}

func TestListArtifactKey(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "b.txt", textPart("b")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "a.txt", textPart("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s2", "c.txt", textPart("c")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s2", "user:shared.txt", textPart("s")); err != nil {
		t.Fatal(err)
	}

	keys, err := svc.ListArtifactKey(ctx, "app", "u1", "s1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.txt", "b.txt", "user:shared.txt"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteArtifact(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if _, err := svc.SaveArtifact(ctx, "app", "u1", "s1", "report.txt", textPart("v")); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteArtifact(ctx, "app", "u1", "s1", "report.txt"); err != nil {
		t.Fatal(err)
	}

	versions, err := svc.ListVersions(ctx, "app", "u1", "s1", "report.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 0 {
		t.Errorf("versions after delete = %v, want none", versions)
	}

	// Deleting again is a no-op.
	if err := svc.DeleteArtifact(ctx, "app", "u1", "s1", "report.txt"); err != nil {
		t.Fatal(err)
	}
}
