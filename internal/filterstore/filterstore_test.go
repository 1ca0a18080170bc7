/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package filterstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gosubstudio/internal/nde"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func italiciseGraphJSON(t *testing.T) []byte {
	t.Helper()
	data, err := nde.MarshalGraph(nde.FromSingleIntermediate(nde.Italicise{}))
	if err != nil {
		t.Fatalf("marshal graph: %v", err)
	}
	return data
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := &Filter{Name: "Italics", Description: "italicise the whole line", Graph: italiciseGraphJSON(t)}
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if f.ID == "" {
		t.Fatalf("save must assign an id")
	}

	got, err := s.Get(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Italics" || got.Description != "italicise the whole line" {
		t.Fatalf("round trip metadata: %+v", got)
	}
	if _, err := nde.UnmarshalGraph(got.Graph); err != nil {
		t.Fatalf("stored graph must stay loadable: %v", err)
	}

	byName, err := s.GetByName(ctx, "Italics")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID != f.ID {
		t.Fatalf("ids differ: %q vs %q", byName.ID, f.ID)
	}
}

func TestSaveUpdatesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := &Filter{Name: "Italics", Graph: italiciseGraphJSON(t)}
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	created := f.CreatedAt

	f.Description = "updated"
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "updated" {
		t.Fatalf("description not updated: %q", got.Description)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at must not change on update")
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("update must not add rows: %d", len(all))
	}
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, &Filter{Name: "  ", Graph: italiciseGraphJSON(t)}); err == nil {
		t.Fatalf("blank name must be rejected")
	}
	if err := s.Save(ctx, &Filter{Name: "broken", Graph: []byte(`{"version": 99}`)}); err == nil {
		t.Fatalf("invalid graph payload must be rejected")
	}
	if err := s.Save(ctx, &Filter{ID: "no-such-id", Name: "ghost", Graph: italiciseGraphJSON(t)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of unknown id: got %v", err)
	}
}

func TestDuplicateNameFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	graph := italiciseGraphJSON(t)
	if err := s.Save(ctx, &Filter{Name: "Italics", Graph: graph}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, &Filter{Name: "Italics", Graph: graph}); err == nil {
		t.Fatalf("duplicate name must violate the unique constraint")
	}
}

func TestListAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	graph := italiciseGraphJSON(t)
	fixtures := []Filter{
		{Name: "Zoom intro", Description: "frame by frame split for the opening"},
		{Name: "Italics", Description: "italicise dialogue"},
		{Name: "Pin topright", Description: "reposition signs"},
	}
	for i := range fixtures {
		fixtures[i].Graph = graph
		if err := s.Save(ctx, &fixtures[i]); err != nil {
			t.Fatalf("save %q: %v", fixtures[i].Name, err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Italics" || all[2].Name != "Zoom intro" {
		t.Fatalf("list order: %+v", all)
	}

	hits, err := s.Search(ctx, "FRAME")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Zoom intro" {
		t.Fatalf("search hits: %+v", hits)
	}

	hits, err = s.Search(ctx, "")
	if err != nil {
		t.Fatalf("search empty: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("empty term must list everything: %d", len(hits))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := &Filter{Name: "Italics", Graph: italiciseGraphJSON(t)}
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if err := s.Delete(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f := &Filter{Name: "Italics", Graph: italiciseGraphJSON(t)}
	if err := s.Save(ctx, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	got, err := again.GetByName(ctx, "Italics")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.ID != f.ID {
		t.Fatalf("id drifted across reopen")
	}
}
